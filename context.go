package formrules

import (
	"slices"
	"strconv"
)

type keyKind uint8

const (
	keyNone keyKind = iota
	keyField
	keyIndex
)

// Key addresses the current position inside its container: a field name, a
// list index, or nothing at all for a traversal root.
type Key struct {
	kind  keyKind
	name  string
	index int
}

// FieldKey returns a Key naming an object field.
func FieldKey(name string) Key { return Key{kind: keyField, name: name} }

// IndexKey returns a Key addressing a list item.
func IndexKey(i int) Key { return Key{kind: keyIndex, index: i} }

// Name returns the field name when k addresses a field.
func (k Key) Name() (string, bool) { return k.name, k.kind == keyField }

// Index returns the list index when k addresses a list item.
func (k Key) Index() (int, bool) { return k.index, k.kind == keyIndex }

// IsZero reports whether k addresses nothing.
func (k Key) IsZero() bool { return k.kind == keyNone }

func (k Key) String() string {
	switch k.kind {
	case keyField:
		return k.name
	case keyIndex:
		return "[" + strconv.Itoa(k.index) + "]"
	default:
		return ""
	}
}

// Context records where the walker currently is. Root stays fixed for a
// whole traversal, Parent is the object one level up and Self is the object
// whose fields are being matched. Path joins keys with "." and renders list
// items as ".[i]".
type Context struct {
	Root   any
	Parent any
	Self   any
	Path   string
	Key    Key

	segs []Key
}

// ResolveContext is handed to resolvers: the visit Context plus the field value.
type ResolveContext struct {
	Context
	Value any
}

// deriveContext builds the Context for visiting key inside obj. A nil parent
// marks obj as the traversal root.
func deriveContext(parent *Context, obj any, key Key) Context {
	if parent == nil {
		return Context{
			Root: obj,
			Self: obj,
			Path: key.String(),
			Key:  key,
			segs: []Key{key},
		}
	}
	path := key.String()
	if parent.Path != "" {
		path = parent.Path + "." + path
	}
	return Context{
		Root:   parent.Root,
		Parent: parent.Self,
		Self:   obj,
		Path:   path,
		Key:    key,
		segs:   append(slices.Clip(parent.segs), key),
	}
}

// itemContext addresses item i of the list field visited by ctx. Self keeps
// pointing at the object holding the list, so fields of the item see that
// object as their Parent.
func itemContext(ctx Context, i int) Context {
	key := IndexKey(i)
	return Context{
		Root:   ctx.Root,
		Parent: ctx.Self,
		Self:   ctx.Self,
		Path:   ctx.Path + "." + key.String(),
		Key:    key,
		segs:   append(slices.Clip(ctx.segs), key),
	}
}

// relative returns the field names of c below depth, the number of segments
// of the context the traversal started from.
func (c Context) relative(depth int) []string {
	if depth > len(c.segs) {
		return nil
	}
	out := make([]string, 0, len(c.segs)-depth)
	for _, k := range c.segs[depth:] {
		out = append(out, k.String())
	}
	return out
}

func depthOf(c *Context) int {
	if c == nil {
		return 0
	}
	return len(c.segs)
}
