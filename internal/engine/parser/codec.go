package parser

import (
	"encoding/json"
	"fmt"

	"inspector/internal/core/errors"
)

// CodecVersion identifies the tree encoding. Bump it whenever the node
// types or their encoded fields change so stale cache entries are rejected.
const CodecVersion = 1

type encodedTree struct {
	Version int           `json:"version"`
	Nodes   []encodedNode `json:"nodes"`
}

type encodedNode struct {
	Kind      string     `json:"kind"`
	Class     *ClassDecl `json:"class,omitempty"`
	Namespace *encodedNS `json:"namespace,omitempty"`
	Use       *UseDecl   `json:"use,omitempty"`
	Other     *OtherDecl `json:"other,omitempty"`
}

type encodedNS struct {
	Name string        `json:"name"`
	Line int           `json:"line"`
	Body []encodedNode `json:"body,omitempty"`
}

// EncodeTree serializes tree with the current codec version.
func EncodeTree(tree *SyntaxTree) ([]byte, error) {
	if tree == nil {
		return nil, fmt.Errorf("encode tree: nil tree")
	}
	nodes, err := encodeNodes(tree.Nodes)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(encodedTree{Version: CodecVersion, Nodes: nodes})
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	return data, nil
}

func encodeNodes(nodes []Node) ([]encodedNode, error) {
	out := make([]encodedNode, 0, len(nodes))
	for _, node := range nodes {
		switch n := node.(type) {
		case *ClassDecl:
			out = append(out, encodedNode{Kind: KindClass.String(), Class: n})
		case *NamespaceDecl:
			body, err := encodeNodes(n.Body)
			if err != nil {
				return nil, err
			}
			out = append(out, encodedNode{Kind: KindNamespace.String(), Namespace: &encodedNS{Name: n.Name, Line: n.Line, Body: body}})
		case *UseDecl:
			out = append(out, encodedNode{Kind: KindUse.String(), Use: n})
		case *OtherDecl:
			out = append(out, encodedNode{Kind: KindOther.String(), Other: n})
		default:
			return nil, fmt.Errorf("encode tree: unsupported node %T", node)
		}
	}
	return out, nil
}

// DecodeTree restores a tree produced by EncodeTree. Any version mismatch or
// malformed payload is reported as *errors.CacheFormatError.
func DecodeTree(key string, data []byte) (*SyntaxTree, error) {
	var enc encodedTree
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, &errors.CacheFormatError{Key: key, Reason: err.Error()}
	}
	if enc.Version != CodecVersion {
		return nil, &errors.CacheFormatError{
			Key:    key,
			Reason: fmt.Sprintf("codec version %d, want %d", enc.Version, CodecVersion),
		}
	}
	nodes, err := decodeNodes(key, enc.Nodes)
	if err != nil {
		return nil, err
	}
	return &SyntaxTree{Nodes: nodes}, nil
}

func decodeNodes(key string, in []encodedNode) ([]Node, error) {
	out := make([]Node, 0, len(in))
	for _, n := range in {
		var node Node
		switch {
		case n.Kind == KindClass.String() && n.Class != nil:
			node = n.Class
		case n.Kind == KindNamespace.String() && n.Namespace != nil:
			body, err := decodeNodes(key, n.Namespace.Body)
			if err != nil {
				return nil, err
			}
			node = &NamespaceDecl{Name: n.Namespace.Name, Line: n.Namespace.Line, Body: body}
		case n.Kind == KindUse.String() && n.Use != nil:
			node = n.Use
		case n.Kind == KindOther.String() && n.Other != nil:
			node = n.Other
		default:
			return nil, &errors.CacheFormatError{Key: key, Reason: fmt.Sprintf("unknown node kind %q", n.Kind)}
		}
		out = append(out, node)
	}
	return out, nil
}
