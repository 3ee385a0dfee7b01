package ast

// Diagnostic is a syntax error reported by a parser.
type Diagnostic struct {
	File    *SourceFile
	Pos     int
	End     int
	Code    int
	Message string
}

// Parse error codes, numbered after their tsc counterparts.
const (
	CodeUnterminatedString   = 1002
	CodeIdentifierExpected   = 1003
	CodeExpected             = 1005
	CodeUnterminatedComment  = 1010
	CodeTypeExpected         = 1110
	CodeInvalidCharacter     = 1127
	CodeDeclarationExpected  = 1128
	CodeUnterminatedTemplate = 1160
)
