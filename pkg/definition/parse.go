// Package definition parses node definition text into node records.
//
// A definition is a sequence of "Key = value" lines. Lines without "=" are
// ignored, so blank lines and comments need no special syntax.
package definition

import (
	"regexp"
	"strings"

	"meshconf/pkg/model"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// byteOrderMark is prepended by some Windows editors.
const byteOrderMark = "\uFEFF"

// Parse builds the record for the node called name. Unrecognized keys are
// reported and skipped; parsing always runs to the end of text so that every
// problem surfaces in one pass.
func Parse(name, text string) (model.NodeRecord, Diagnostics) {
	node := model.NodeRecord{Name: name}
	var diags Diagnostics
	text = strings.TrimPrefix(text, byteOrderMark)
	for _, line := range lineBreak.Split(text, -1) {
		rawKey, rest, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key := strings.TrimSpace(rawKey)
		attr, known := model.ParseAttribute(key)
		if !known {
			diags = append(diags, unrecognized(name, key))
			continue
		}
		switch attr {
		case model.ConnectTo:
			node.HasConnectTo = true
			for _, item := range strings.Split(rest, ",") {
				node.ConnectTo = append(node.ConnectTo, strings.TrimSpace(item))
			}
		case model.DefaultRoute:
			if strings.TrimSpace(rest) == "true" {
				node.DefaultRoute = true
			}
		case model.SplitFiles:
			if strings.TrimSpace(rest) == "true" {
				node.SplitFiles = true
			}
		default:
			node.Attributes.Append(attr, strings.TrimSpace(rest))
		}
	}
	return node, diags
}
