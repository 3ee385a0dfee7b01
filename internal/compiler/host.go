package compiler

import (
	"github.com/tsgonest/dtsresolve/internal/ast"
	"github.com/tsgonest/dtsresolve/internal/parser"
	"github.com/tsgonest/dtsresolve/internal/vfs"
)

// ParseFunc parses one source file. The native parser and the tree-sitter
// frontend both satisfy it.
type ParseFunc func(fileName, text string) (*ast.SourceFile, []ast.Diagnostic)

// NativeParser is the built-in recursive-descent parser.
var NativeParser ParseFunc = parser.ParseSourceFile

// CreateDefaultFS creates a cached view of the OS filesystem.
func CreateDefaultFS() vfs.FS {
	return vfs.Cached(vfs.OS())
}
