package templeton

// Extended keys injected into the overrides of every each iteration.
const (
	KeyParent = "~"        // the data enclosing the iterated collection
	KeyPath   = "__path__" // the dotted path of the iterated collection
	KeyKey    = "__key__"  // the key of the current entry
)

// BlockContext is handed to a BlockFunc when a top level block closes.
type BlockContext struct {
	// Name is the block behavior being run, e.g. "each".
	Name string
	// ID is the key expression the block was opened with.
	ID string
	// Value is ID resolved against Fields, or nil when missing.
	Value any
	// Content is the verbatim template text between the block's markers.
	Content string
	// Fields is the data the enclosing template is rendered against.
	Fields any
	// Overrides holds the extended keys of the enclosing iteration.
	Overrides map[string]any
	// Path is the dotted path of the entry being rendered, built from the
	// enclosing iterations.
	Path string
	// Previous describes the block that finished just before this one at
	// the same level; its Name is empty for the first block.
	Previous PreviousBlock

	engine *Engine
}

// PreviousBlock records the name, id and value of a finished block so a
// following sibling such as else can consult it.
type PreviousBlock struct {
	Name  string
	ID    string
	Value any
}

// Render renders the block's content against fields with the given
// overrides.
func (c *BlockContext) Render(fields any, overrides map[string]any) (string, error) {
	return c.engine.render(c.Content, fields, overrides)
}

// Delegate runs another registered block behavior with this context.
func (c *BlockContext) Delegate(name string) (string, error) {
	return c.engine.runBlock(name, c)
}

// ExtendedKeys reports whether iterations should inject extended keys.
func (c *BlockContext) ExtendedKeys() bool {
	return c.engine.extendedKeys
}

func enclosingPath(overrides map[string]any) string {
	parent := stringify(overrides[KeyPath])
	key := stringify(overrides[KeyKey])
	if parent != "" && key != "" {
		return parent + "." + key
	}
	return parent + key
}
