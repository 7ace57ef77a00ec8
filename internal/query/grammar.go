package query

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Query is a parsed selector expression.
type Query struct {
	Expr  *OrExpr `@@`
	Limit *int    `( "limit" @Int )?`
}

type OrExpr struct {
	Left  *AndExpr   `@@`
	Right []*AndExpr `( "or" @@ )*`
}

type AndExpr struct {
	Left  *Unary   `@@`
	Right []*Unary `( "and" @@ )*`
}

type Unary struct {
	Not     *Unary   `  "not" @@`
	Primary *Primary `| @@`
}

type Primary struct {
	Group  *OrExpr `  "(" @@ ")"`
	Self   bool    `| @"self"`
	Ref    string  `| "@" @( "caller" | "master" )`
	ID     *int    `| "#" @Int`
	Phrase *Phrase `| @@`
}

// Phrase selects characters or entities by side, position, kind and
// filters, e.g. "my standby characters with tag (sword)". A leading "all"
// keeps defeated characters. The lookahead rejects empty phrases.
type Phrase struct {
	All      bool      `(?= "all" | "my" | "opp" | "active" | "standby" | "next" | "prev" | "defeated" | "characters" | "character" | "summons" | "supports" | "equipments" | "statuses" | "combat" "statuses" | "with" | "has") @"all"?`
	Side     string    `@( "my" | "opp" )?`
	Position string    `@( "active" | "standby" | "next" | "prev" | "defeated" )?`
	Kind     string    `@( "characters" | "character" | "summons" | "supports" | "equipments" | "statuses" | "combat" "statuses" )?`
	Filters  []*Filter `@@*`
}

type Filter struct {
	Tag   *string    `  "with" "tag" "(" @Ident ")"`
	DefID *int       `| "with" "definition" "id" @Int`
	Has   *HasFilter `| "has" @@`
}

// HasFilter keeps characters carrying an attached entity of a definition.
type HasFilter struct {
	Kind  string `@( "equipment" | "status" )`
	DefID int    `"with" "definition" "id" @Int`
}

var parser = participle.MustBuild[Query](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "whitespace", Pattern: `[\s]+`},
		{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
		{Name: "Int", Pattern: `\d+`},
		{Name: "Punct", Pattern: `[()#@]`},
	})),
	participle.Elide("whitespace"),
	participle.UseLookahead(3),
)

// Parse compiles a query string. A grammar panic is reported as an error.
func Parse(input string) (q *Query, err error) {
	defer func() {
		if r := recover(); r != nil {
			q, err = nil, fmt.Errorf("query %q: %v", input, r)
		}
	}()
	return parser.ParseString("", input)
}
