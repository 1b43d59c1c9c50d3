package compiler

import "github.com/chrlang/chr/internal/model"

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	TkIllegal TokenKind = iota
	TkEOF

	TkIdentifier // bare identifier: class, constraints names, rule names, functor symbols
	TkVariable   // $Name
	TkIntLit
	TkFloatLit
	TkStringLit

	TkTrue
	TkFalse
	TkClass
	TkConstraints
	TkNot
	TkAnd
	TkOr

	TkLParen
	TkRParen
	TkLBracket
	TkRBracket
	TkLBrace
	TkRBrace
	TkComma
	TkDot
	TkColon
	TkSlashArrow // \  (simpagation kept/removed separator)
	TkAt         // @
	TkPipe       // |

	TkPlus
	TkMinus
	TkStar
	TkPercent
	TkEq      // =
	TkEqEq    // ==
	TkNotEq   // !=
	TkLe      // <=
	TkLt      // <
	TkGe      // >=
	TkGt      // >
	TkSimpArrow // <=>
	TkPropArrow // ==>
	TkQuote     // '
)

// Token is one lexical unit, with its source position for diagnostics.
type Token struct {
	Kind     TokenKind
	Text     string
	Position model.Position
}
