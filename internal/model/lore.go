package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/mcoot/eventide-gm/internal/model/ordered"
)

// LoreIntroductionKey is the top-level leaf shown as the lore introduction
const LoreIntroductionKey = "introduction"

// LoreKind tags which variant a LoreNode holds
type LoreKind int

const (
	LoreLeaf    LoreKind = iota // plain prose
	LoreSection                 // titled record with optional children
	LoreOpaque                  // any other JSON value, kept verbatim and never shown
)

// LoreNode is either a prose leaf, a section record or an opaque value
type LoreNode struct {
	Kind LoreKind

	// Leaf
	Prose string

	// Section
	Title       string
	Description string
	Text        string
	ImageURL    string
	ImageFileID string
	Sections    *ordered.Map[*LoreNode]

	// Opaque
	Raw json.RawMessage

	// doc holds every key of a decoded section in document order, so keys
	// the bot does not use are written back unchanged
	doc *ordered.Map[json.RawMessage]
}

// NewLoreLeaf creates a prose node
func NewLoreLeaf(prose string) *LoreNode {
	return &LoreNode{Kind: LoreLeaf, Prose: prose}
}

// HasChildren reports whether the node is a section with a child collection
func (n *LoreNode) HasChildren() bool {
	return n.Kind == LoreSection && n.Sections != nil
}

// Visible reports whether the node can be shown or navigated to
func (n *LoreNode) Visible() bool {
	return n != nil && n.Kind != LoreOpaque
}

// UnmarshalJSON decodes a string as a leaf and an object as a section.
// Anything else is kept as an opaque value. Section fields of the wrong type
// and a "sections" value that is not an object are left in the document
// but not used.
func (n *LoreNode) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	switch {
	case res.Type == gjson.String:
		*n = LoreNode{Kind: LoreLeaf, Prose: res.String()}
	case res.IsObject():
		*n = LoreNode{Kind: LoreSection, doc: ordered.New[json.RawMessage]()}
		res.ForEach(func(key, value gjson.Result) bool {
			n.doc.Set(key.String(), json.RawMessage(value.Raw))
			return true
		})
		n.Title = stringField(res, "title")
		n.Description = stringField(res, "description")
		n.Text = stringField(res, "text")
		n.ImageURL = stringField(res, "image_url")
		n.ImageFileID = stringField(res, "image_file_id")
		if sections := res.Get("sections"); sections.IsObject() {
			n.Sections = ordered.New[*LoreNode]()
			if err := n.Sections.UnmarshalJSON([]byte(sections.Raw)); err != nil {
				return err
			}
		}
	default:
		*n = LoreNode{Kind: LoreOpaque, Raw: json.RawMessage(res.Raw)}
	}
	return nil
}

func stringField(res gjson.Result, key string) string {
	if v := res.Get(key); v.Type == gjson.String {
		return v.String()
	}
	return ""
}

// MarshalJSON writes leaves as strings and opaque values verbatim. Sections
// keep the key order and unused keys of the document they were read from.
func (n LoreNode) MarshalJSON() ([]byte, error) {
	switch n.Kind {
	case LoreLeaf:
		return ordered.Marshal(n.Prose)
	case LoreOpaque:
		if len(n.Raw) == 0 {
			return []byte("null"), nil
		}
		return n.Raw, nil
	}
	return mergeFields(n.doc, []loreField{
		stringLoreField("title", n.Title),
		stringLoreField("description", n.Description),
		stringLoreField("text", n.Text),
		stringLoreField("image_url", n.ImageURL),
		stringLoreField("image_file_id", n.ImageFileID),
		{key: "sections", value: n.Sections, set: n.Sections != nil, decodes: gjson.Result.IsObject},
	})
}

// loreField is a section key the bot decodes into a LoreNode field
type loreField struct {
	key   string
	value any
	set   bool
	// decodes reports whether a document value of this key was decoded into the field
	decodes func(gjson.Result) bool
}

func stringLoreField(key, value string) loreField {
	return loreField{key: key, value: value, set: value != "", decodes: func(r gjson.Result) bool {
		return r.Type == gjson.String
	}}
}

// mergeFields writes doc in order with decoded keys replaced by their
// current values, followed by set fields the document did not have
func mergeFields(doc *ordered.Map[json.RawMessage], fields []loreField) ([]byte, error) {
	byKey := make(map[string]loreField, len(fields))
	for _, f := range fields {
		byKey[f.key] = f
	}

	out := ordered.New[any]()
	doc.Each(func(key string, raw json.RawMessage) bool {
		f, ok := byKey[key]
		if ok && (f.set || f.decodes(gjson.ParseBytes(raw))) {
			out.Set(key, f.value)
		} else {
			out.Set(key, raw)
		}
		return true
	})
	for _, f := range fields {
		if f.set && !out.Has(f.key) {
			out.Set(f.key, f.value)
		}
	}
	return out.MarshalJSON()
}

// LoreTree is the whole lore document. Root-level image keys belong to the
// introduction leaf.
type LoreTree struct {
	Nodes       *ordered.Map[*LoreNode]
	ImageURL    string
	ImageFileID string

	// Unavailable holds the user-facing reason when the document failed to load
	Unavailable string

	// order is the top-level key order of the decoded document
	order []string
}

// NewLoreTree creates an empty, available tree
func NewLoreTree() *LoreTree {
	return &LoreTree{Nodes: ordered.New[*LoreNode]()}
}

// UnavailableLore creates a tree that only reports why lore cannot be shown
func UnavailableLore(reason string) *LoreTree {
	return &LoreTree{Nodes: ordered.New[*LoreNode](), Unavailable: reason}
}

// SectionCount is the number of top-level entries that can be shown
func (t *LoreTree) SectionCount() int {
	count := 0
	t.Nodes.Each(func(_ string, node *LoreNode) bool {
		if node.Visible() {
			count++
		}
		return true
	})
	return count
}

// OpaqueKeys lists the top-level keys whose values are neither prose nor a
// section. They are kept in the document but never shown.
func (t *LoreTree) OpaqueKeys() []string {
	var keys []string
	t.Nodes.Each(func(key string, node *LoreNode) bool {
		if node != nil && node.Kind == LoreOpaque && !isRootImageKey(key) {
			keys = append(keys, key)
		}
		return true
	})
	return keys
}

const (
	rootImageURLKey    = "image_url"
	rootImageFileIDKey = "image_file_id"
)

func isRootImageKey(key string) bool {
	return key == rootImageURLKey || key == rootImageFileIDKey
}

// UnmarshalJSON decodes the root object, keeping top-level order
func (t *LoreTree) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("lore: invalid json")
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return fmt.Errorf("lore: root must be an object, got %s", res.Type)
	}

	*t = LoreTree{Nodes: ordered.New[*LoreNode]()}

	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		t.order = append(t.order, k)
		if value.Type == gjson.String {
			switch k {
			case rootImageURLKey:
				t.ImageURL = value.String()
				return true
			case rootImageFileIDKey:
				t.ImageFileID = value.String()
				return true
			}
		}
		node := &LoreNode{}
		if uerr := node.UnmarshalJSON([]byte(value.Raw)); uerr != nil {
			err = fmt.Errorf("lore: key %q: %w", k, uerr)
			return false
		}
		t.Nodes.Set(k, node)
		return true
	})
	return err
}

// MarshalJSON writes the entries in the order they were read. Nodes and
// image keys added since then follow, image keys last.
func (t LoreTree) MarshalJSON() ([]byte, error) {
	images := map[string]string{rootImageURLKey: t.ImageURL, rootImageFileIDKey: t.ImageFileID}

	out := ordered.New[any]()
	for _, k := range t.order {
		// A string image key was read into the tree; a non-string one is an
		// opaque node until the tree holds a value for it
		if v, ok := images[k]; ok && (v != "" || !t.Nodes.Has(k)) {
			out.Set(k, v)
			continue
		}
		if node, ok := t.Nodes.Get(k); ok {
			out.Set(k, node)
		}
	}
	t.Nodes.Each(func(k string, node *LoreNode) bool {
		if !out.Has(k) {
			out.Set(k, node)
		}
		return true
	})
	for _, k := range []string{rootImageURLKey, rootImageFileIDKey} {
		if images[k] != "" && !out.Has(k) {
			out.Set(k, images[k])
		}
	}
	return out.MarshalJSON()
}
