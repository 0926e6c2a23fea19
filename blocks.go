package templeton

import (
	"fmt"
	"strings"
)

// BlockFunc renders a block and returns the text to append to the output.
type BlockFunc func(ctx *BlockContext) (string, error)

// defaultBlockName is the behavior used by blocks opened without an
// explicit helper, e.g. {{#items}}.
const defaultBlockName = "_default"

func defaultBlocks() map[string]BlockFunc {
	return map[string]BlockFunc{
		defaultBlockName: dispatchBlock,
		"each":           eachBlock,
		"if":             ifBlock,
		"else":           elseBlock,
		"unless":         unlessBlock,
	}
}

// dispatchBlock iterates over sequences and treats any other value as a
// condition.
func dispatchBlock(ctx *BlockContext) (string, error) {
	if _, ok := asSequence(ctx.Value); ok {
		return ctx.Delegate("each")
	}
	return ctx.Delegate("if")
}

// eachBlock renders the content once per entry of the block's value, with
// the entry as data. Values that cannot be iterated render nothing.
func eachBlock(ctx *BlockContext) (string, error) {
	entries, ok := asIterable(ctx.Value)
	if !ok {
		return "", nil
	}
	extended := ctx.ExtendedKeys()
	path := ctx.ID
	if ctx.ID == "." {
		path = ctx.Path
	}

	var out strings.Builder
	for key, item := range entries.Entries() {
		var overrides map[string]any
		if extended {
			overrides = map[string]any{
				KeyParent: ctx.Fields,
				KeyPath:   path,
				KeyKey:    key,
			}
		}
		rendered, err := ctx.Render(item, overrides)
		if err != nil {
			return "", fmt.Errorf("each %q, entry %q: %w", ctx.ID, key, err)
		}
		out.WriteString(rendered)
	}
	return out.String(), nil
}

// ifBlock renders the content against the current data when the value is
// truthy.
func ifBlock(ctx *BlockContext) (string, error) {
	if !isTruthy(ctx.Value) {
		return "", nil
	}
	return ctx.Render(ctx.Fields, ctx.Overrides)
}

// elseBlock is the inverse of ifBlock.
func elseBlock(ctx *BlockContext) (string, error) {
	if isTruthy(ctx.Value) {
		return "", nil
	}
	return ctx.Render(ctx.Fields, ctx.Overrides)
}

func unlessBlock(ctx *BlockContext) (string, error) {
	return ctx.Delegate("else")
}
