package graphml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Namespace is the GraphML schema namespace the backend emits.
const Namespace = "http://graphml.graphdrawing.org/xmlns"

// defaultEdgeType labels edges that carry no explicit type.
const defaultEdgeType = "CONNECTED_TO"

type xmlGraphML struct {
	XMLName xml.Name `xml:"graphml"`
	Xmlns   string   `xml:"xmlns,attr"`
	Keys    []xmlKey `xml:"key"`
	Graph   xmlGraph `xml:"graph"`
}

type xmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type xmlGraph struct {
	ID          string    `xml:"id,attr"`
	EdgeDefault string    `xml:"edgedefault,attr"`
	Nodes       []xmlNode `xml:"node"`
	Edges       []xmlEdge `xml:"edge"`
}

type xmlNode struct {
	ID   string    `xml:"id,attr"`
	Data []xmlData `xml:"data"`
}

type xmlEdge struct {
	Source string    `xml:"source,attr"`
	Target string    `xml:"target,attr"`
	Data   []xmlData `xml:"data"`
}

type xmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// Decode reads a GraphML document.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read graphml: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes parses a GraphML document.
func DecodeBytes(data []byte) (*Document, error) {
	var raw xmlGraphML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse graphml: %w", err)
	}

	// Key declarations map data entries to attribute names. Files
	// without declarations fall back to the literal key id.
	attrName := make(map[string]string, len(raw.Keys))
	for _, k := range raw.Keys {
		attrName[k.ID] = k.AttrName
	}
	resolve := func(key string) string {
		if name, ok := attrName[key]; ok && name != "" {
			return name
		}
		return key
	}

	doc := &Document{
		Nodes: make([]Node, 0, len(raw.Graph.Nodes)),
		Edges: make([]Edge, 0, len(raw.Graph.Edges)),
	}

	for _, n := range raw.Graph.Nodes {
		node := Node{ID: n.ID}
		for _, d := range n.Data {
			switch resolve(d.Key) {
			case "name", "node_name", "label":
				node.Name = d.Value
			case "type", "node_type":
				node.Type = d.Value
			case "id", "node_id":
				if node.ID == "" {
					node.ID = d.Value
				}
			}
		}
		doc.Nodes = append(doc.Nodes, node)
	}

	for _, e := range raw.Graph.Edges {
		edge := Edge{Source: e.Source, Target: e.Target}
		for _, d := range e.Data {
			if name := resolve(d.Key); name == "type" || name == "edge_type" {
				edge.Type = d.Value
			}
		}
		doc.Edges = append(doc.Edges, edge)
	}

	return doc, nil
}

// Encode writes doc in the backend's GraphML dialect.
func Encode(w io.Writer, doc *Document) error {
	raw := xmlGraphML{
		Xmlns: Namespace,
		Keys: []xmlKey{
			{ID: "node_id", For: "node", AttrName: "id", AttrType: "string"},
			{ID: "node_name", For: "node", AttrName: "name", AttrType: "string"},
			{ID: "node_type", For: "node", AttrName: "type", AttrType: "string"},
			{ID: "edge_type", For: "edge", AttrName: "type", AttrType: "string"},
		},
		Graph: xmlGraph{
			ID:          "G",
			EdgeDefault: "directed",
			Nodes:       make([]xmlNode, 0, len(doc.Nodes)),
			Edges:       make([]xmlEdge, 0, len(doc.Edges)),
		},
	}

	for _, n := range doc.Nodes {
		name := n.Name
		if name == "" {
			name = n.ID
		}
		typ := n.Type
		if typ == "" {
			typ = "unknown"
		}
		raw.Graph.Nodes = append(raw.Graph.Nodes, xmlNode{
			ID: n.ID,
			Data: []xmlData{
				{Key: "node_id", Value: n.ID},
				{Key: "node_name", Value: name},
				{Key: "node_type", Value: typ},
			},
		})
	}

	for _, e := range doc.Edges {
		typ := e.Type
		if typ == "" {
			typ = defaultEdgeType
		}
		raw.Graph.Edges = append(raw.Graph.Edges, xmlEdge{
			Source: e.Source,
			Target: e.Target,
			Data:   []xmlData{{Key: "edge_type", Value: typ}},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write graphml: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encode graphml: %w", err)
	}
	return enc.Close()
}

// EncodeBytes renders doc as a GraphML byte slice.
func EncodeBytes(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
