package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/markweave/internal/shortcode"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// assembleTabs turns each tab group's panels into a button strip and a panel
// strip. Groups are processed innermost first, and a group only takes the
// panels whose nearest enclosing group it is, so nested tab groups survive.
func assembleTabs(root *html.Node) {
	groups := findAll(root, func(n *html.Node) bool { return hasClass(n, "tabs-container") })
	for i := len(groups) - 1; i >= 0; i-- {
		assembleTabGroup(groups[i])
	}
}

func assembleTabGroup(group *html.Node) {
	var panels []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case hasClass(c, "tab-panel-item"):
				panels = append(panels, c)
			case hasClass(c, "tabs-container"):
			default:
				collect(c)
			}
		}
	}
	collect(group)
	if len(panels) == 0 {
		return
	}

	buttons := element(atom.Div, "class", "tab-buttons")
	contents := element(atom.Div, "class", "tab-panels")
	for i, panel := range panels {
		active := ""
		if i == 0 {
			active = " active"
		}
		idx := strconv.Itoa(i)

		button := element(atom.Button, "class", "tab-button"+active, "data-tab", idx)
		name, _ := getAttr(panel, "data-name")
		if name == "" {
			button.AppendChild(text(fmt.Sprintf("Tab %d", i+1)))
		} else {
			appendAll(button, tabLabel(name))
		}
		buttons.AppendChild(button)

		content := element(atom.Div, "class", "tab-content"+active, "data-tab-content", idx)
		appendAll(content, detachChildren(panel))
		contents.AppendChild(content)
	}

	detachChildren(group)
	group.AppendChild(buttons)
	group.AppendChild(contents)
}

// tabLabel splits a tab name into text runs and icon elements.
func tabLabel(name string) []*html.Node {
	var out []*html.Node
	pos := 0
	for _, m := range shortcode.IconPattern.FindAllStringSubmatchIndex(name, -1) {
		if m[0] > pos {
			out = append(out, text(name[pos:m[0]]))
		}
		out = append(out, element(atom.I, "class", "fas fa-"+name[m[2]:m[3]]))
		pos = m[1]
	}
	if pos < len(name) {
		out = append(out, text(name[pos:]))
	}
	return out
}

// buildFileTrees replaces every file-tree carrier with the tree its text
// describes. Each line's leading whitespace sets its depth (two characters a
// level); a line starting with "+" is a folder whose contents follow at a
// deeper level. Scopes close when a shallower line appears, and a line deeper
// than the open scopes stays in the innermost one.
func buildFileTrees(root *html.Node) {
	for _, wrapper := range findAll(root, func(n *html.Node) bool { return hasClass(n, "file-tree-data-wrapper") }) {
		replace(wrapper, fileTree(textContent(wrapper)))
	}
}

func fileTree(src string) *html.Node {
	tree := element(atom.Div, "class", "file-tree")
	scopes := []*html.Node{tree}

	src = strings.TrimSpace(strings.ReplaceAll(src, "\r\n", "\n"))
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		depth := indent / 2
		if depth < len(scopes)-1 {
			scopes = scopes[:depth+1]
		}

		folder := strings.HasPrefix(trimmed, "+")
		label := strings.TrimSpace(strings.TrimPrefix(trimmed, "+"))
		kind, icon := "file-item", "fa-file-lines"
		if folder {
			kind, icon = "folder", "fa-folder"
		}

		row := element(atom.Div, "class", "sidebar-item "+kind)
		row.AppendChild(element(atom.I, "class", "fas "+icon+" item-icon"))
		title := element(atom.Span, "class", "item-title")
		title.AppendChild(text(label))
		row.AppendChild(title)

		parent := scopes[len(scopes)-1]
		parent.AppendChild(row)
		if folder {
			content := element(atom.Div, "class", "folder-content expanded")
			parent.AppendChild(content)
			scopes = append(scopes, content)
		}
	}
	return tree
}
