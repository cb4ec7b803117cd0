package stubserver

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/plantquery/plantquery/internal/graphml"
)

// genericLimit caps the fallback element scan so a huge unrelated XML
// document does not become a thousand-node "plant".
const genericLimit = 50

var errNoElements = errors.New("document contains no elements")

// parseDiagram extracts components and connections from an uploaded
// diagram. GraphML payloads are taken as-is. Otherwise the document is
// scanned for DEXPI vocabulary: Equipment and PipingComponent elements
// become nodes (ID, ComponentClass, TagName/Name attributes); Pipe and
// Connection elements become edges via FromComponent/StartComponent
// and ToComponent/EndComponent references. Documents without that
// vocabulary fall back to a generic element scan so any well-formed
// XML yields something to talk about.
func parseDiagram(data []byte) (*graphml.Document, error) {
	if doc, err := graphml.DecodeBytes(data); err == nil {
		return doc, nil
	}

	var (
		doc     graphml.Document
		generic []graphml.Node
		scanned int
	)

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse diagram: %w", err)
		}

		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case "Equipment", "PipingComponent":
			node := graphml.Node{
				ID:   attrValue(el.Attr, "ID"),
				Name: firstAttr(el.Attr, "TagName", "Name"),
				Type: attrValue(el.Attr, "ComponentClass"),
			}
			if node.ID == "" {
				node.ID = fmt.Sprintf("comp_%d", len(doc.Nodes))
			}
			if node.Type == "" {
				node.Type = el.Name.Local
			}
			if node.Name == "" {
				node.Name = node.ID
			}
			doc.Nodes = append(doc.Nodes, node)
		case "Pipe", "Connection":
			from := firstAttr(el.Attr, "FromComponent", "StartComponent")
			to := firstAttr(el.Attr, "ToComponent", "EndComponent")
			if from != "" && to != "" {
				doc.Edges = append(doc.Edges, graphml.Edge{Source: from, Target: to, Type: "pipe"})
			}
		default:
			if len(generic) < genericLimit && !structuralElement(el.Name.Local) {
				node := graphml.Node{
					ID:   firstAttr(el.Attr, "id", "ID"),
					Name: firstAttr(el.Attr, "name", "Name"),
					Type: el.Name.Local,
				}
				if node.ID == "" {
					node.ID = fmt.Sprintf("component_%d", scanned)
				}
				generic = append(generic, node)
			}
			scanned++
		}
	}

	if len(doc.Nodes) == 0 && len(doc.Edges) == 0 && len(generic) == 0 && scanned == 0 {
		return nil, errNoElements
	}

	// Without DEXPI vocabulary the generic scan stands in, edgeless.
	if len(doc.Nodes) == 0 {
		doc.Nodes = generic
		doc.Edges = nil
	}
	return &doc, nil
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func firstAttr(attrs []xml.Attr, names ...string) string {
	for _, name := range names {
		if v := attrValue(attrs, name); v != "" {
			return v
		}
	}
	return ""
}

func structuralElement(local string) bool {
	switch strings.ToLower(local) {
	case "root", "document", "xml", "schema":
		return true
	}
	return false
}
