package storage

import (
	"fmt"
	"strings"
)

// GameDDL renders the shared schema. textType is the column type used for
// every text column; engines pass a bytewise collation here so that store
// order equals Go string order.
//
// game_text holds the non-empty text fields of each game lower-cased in Go,
// so substring search folds case the same way on every engine.
func GameDDL(textType string) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS meta (\n  key   TEXT PRIMARY KEY,\n  value TEXT\n);\n\n")

	sb.WriteString("CREATE TABLE IF NOT EXISTS game (\n")
	for i, col := range GameColumns {
		var def string
		switch {
		case col == "id":
			def = fmt.Sprintf("  id %s PRIMARY KEY", textType)
		case col == "tags_json":
			def = fmt.Sprintf("  tags_json %s NOT NULL DEFAULT '[]'", textType)
		case isBoolColumn(col):
			def = fmt.Sprintf("  %s INTEGER NOT NULL DEFAULT 0", col)
		default:
			def = fmt.Sprintf("  %s %s NOT NULL DEFAULT ''", col, textType)
		}
		sb.WriteString(def)
		if i < len(GameColumns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(");\n")
	sb.WriteString("CREATE INDEX IF NOT EXISTS idx_game_order_title ON game(order_title, id);\n")
	sb.WriteString("CREATE INDEX IF NOT EXISTS idx_game_parent ON game(parent_game_id);\n")
	for _, col := range OrderIndexColumns {
		fmt.Fprintf(&sb, "CREATE INDEX IF NOT EXISTS idx_game_%s ON game(%s, order_title, id);\n", col, col)
	}

	fmt.Fprintf(&sb, `
CREATE TABLE IF NOT EXISTS game_value (
  game_id %[1]s NOT NULL REFERENCES game(id) ON DELETE CASCADE,
  field   %[1]s NOT NULL,
  value   %[1]s NOT NULL,
  PRIMARY KEY (game_id, field, value)
);
CREATE INDEX IF NOT EXISTS idx_game_value_lookup ON game_value(field, value, game_id);

CREATE TABLE IF NOT EXISTS game_text (
  game_id %[1]s NOT NULL REFERENCES game(id) ON DELETE CASCADE,
  field   %[1]s NOT NULL,
  text    %[1]s NOT NULL,
  PRIMARY KEY (game_id, field)
);
`, textType)
	return sb.String()
}

func isBoolColumn(col string) bool {
	switch col {
	case "broken", "extreme", "installed", "legacy":
		return true
	}
	return false
}
