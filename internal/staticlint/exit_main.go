// Package staticlint содержит анализаторы кода сервиса.
package staticlint

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const usingExitInMainWarn = "using exit in main"

// ExitMainAnalyzer сообщает о прямом вызове os.Exit в функции main пакета main.
// Вызовы во вложенных функциях и в других функциях пакета не проверяются.
var ExitMainAnalyzer = &analysis.Analyzer{
	Name:     "exitmain",
	Doc:      "check for direct os.Exit calls in main function of main package",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runExitMain,
}

func runExitMain(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	insp, _ := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	filter := []ast.Node{(*ast.FuncDecl)(nil)}

	insp.Preorder(filter, func(node ast.Node) {
		fn, _ := node.(*ast.FuncDecl)
		if fn.Recv != nil || fn.Name.Name != "main" || fn.Body == nil {
			return
		}

		ast.Inspect(fn.Body, func(n ast.Node) bool {
			switch x := n.(type) {
			case *ast.FuncLit:
				return false
			case *ast.CallExpr:
				if isOSExit(pass.TypesInfo, x) {
					pass.Reportf(x.Pos(), usingExitInMainWarn)
				}
			}
			return true
		})
	})

	return nil, nil
}

func isOSExit(info *types.Info, call *ast.CallExpr) bool {
	var id *ast.Ident
	switch fun := call.Fun.(type) {
	case *ast.SelectorExpr:
		id = fun.Sel
	case *ast.Ident:
		id = fun
	default:
		return false
	}

	fn, ok := info.Uses[id].(*types.Func)
	return ok && fn.Pkg() != nil && fn.Pkg().Path() == "os" && fn.Name() == "Exit"
}
