// Package sym defines the glyphs twitgraph uses to tag log lines and CLI
// headings by subsystem. They are stable across log output and docs.
package sym

const (
	IX = "⨳" // ix — ingest a message stream
	AS = "+" // as — assert: persist a message and its assertions
	AX = "⋈" // ax — afterthought extraction
	SO = "⟶" // so — distribution to downstream consumers
	AM = "≡" // am — configuration
	DB = "⊔" // database/storage layer
)

// All returns every glyph keyed by its command name.
func All() map[string]string {
	return map[string]string{
		"ix": IX,
		"as": AS,
		"ax": AX,
		"so": SO,
		"am": AM,
		"db": DB,
	}
}
