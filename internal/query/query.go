// Package query filters datasets with CEL expressions before the browser or
// printer sees them. Each record is bound to the variable "_" as a string map,
// and the expression must evaluate to a boolean.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/oakwood-commons/opx/pkg/opcode"
)

// Filter is a compiled record predicate. Compile once, match many.
type Filter struct {
	prg     cel.Program
	expr    string
	columns []string
}

// newEnv creates the CEL environment with common extension libraries.
func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
}

// New compiles expr into a Filter. Field references through "_" are checked
// against the declared columns so typos fail up front with the valid names.
func New(expr string, columns []string) (*Filter, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}

	if err := validateFieldRefs(ast, columns); err != nil {
		return nil, err
	}

	// Dyn-rooted expressions usually type to dyn; anything concretely
	// non-bool can be rejected before the first record.
	switch out := ast.OutputType().TypeName(); out {
	case "bool", "dyn":
	default:
		return nil, fmt.Errorf("expression must evaluate to a boolean, got %s", out)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	return &Filter{prg: prg, expr: expr, columns: columns}, nil
}

// Expression returns the original expression text.
func (f *Filter) Expression() string {
	return f.expr
}

// Match evaluates the filter against one record. Declared columns the record
// does not carry are bound as empty strings, matching how they render.
func (f *Filter) Match(r opcode.Record) (bool, error) {
	out, _, err := f.prg.Eval(map[string]interface{}{
		"_": f.bind(r),
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}

	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("expression must evaluate to a boolean, got %s", out.Type().TypeName())
	}
	return bool(b), nil
}

// Apply returns a copy of the dataset holding only the matching records, in
// their original order. The first evaluation error stops the filter and names
// the offending record.
func (f *Filter) Apply(ds *opcode.Dataset) (*opcode.Dataset, error) {
	kept := make([]opcode.Record, 0, len(ds.Records))
	for _, r := range ds.Records {
		ok, err := f.Match(r)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", ds.KeyOf(r), err)
		}
		if ok {
			kept = append(kept, r)
		}
	}
	out := *ds
	out.Records = kept
	return &out, nil
}

func (f *Filter) bind(r opcode.Record) map[string]string {
	m := make(map[string]string, len(r)+len(f.columns))
	for _, c := range f.columns {
		m[c] = r.Get(c)
	}
	for k, v := range r {
		m[k] = v
	}
	return m
}

// validateFieldRefs walks the parsed expression in protobuf form, collects
// every field selected off the root variable, and rejects names that do not
// match a declared column.
func validateFieldRefs(ast *cel.Ast, columns []string) error {
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return fmt.Errorf("inspect expression: %w", err)
	}

	refs := make(map[string]bool)
	collectFieldRefs(parsed.GetExpr(), refs)

	declared := make(map[string]bool, len(columns))
	for _, c := range columns {
		declared[c] = true
	}

	var unknown []string
	for name := range refs {
		if !declared[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unknown field %s (valid fields: %s)",
		quoteJoin(unknown), strings.Join(columns, ", "))
}

// collectFieldRefs gathers field names selected off the root "_" variable,
// in both "_.field" and `_["field"]` form, recursing through calls, macros
// (already expanded into comprehensions at parse time), lists, and structs.
func collectFieldRefs(e *exprpb.Expr, refs map[string]bool) {
	if e == nil {
		return
	}

	switch e.ExprKind.(type) {
	case *exprpb.Expr_SelectExpr:
		sel := e.GetSelectExpr()
		if isRootIdent(sel.GetOperand()) {
			refs[sel.GetField()] = true
		}
		collectFieldRefs(sel.GetOperand(), refs)

	case *exprpb.Expr_CallExpr:
		call := e.GetCallExpr()
		if call.GetFunction() == "_[_]" && len(call.GetArgs()) == 2 && isRootIdent(call.GetArgs()[0]) {
			if c := call.GetArgs()[1].GetConstExpr(); c != nil {
				if s, ok := c.ConstantKind.(*exprpb.Constant_StringValue); ok {
					refs[s.StringValue] = true
				}
			}
		}
		collectFieldRefs(call.GetTarget(), refs)
		for _, arg := range call.GetArgs() {
			collectFieldRefs(arg, refs)
		}

	case *exprpb.Expr_ListExpr:
		for _, elem := range e.GetListExpr().GetElements() {
			collectFieldRefs(elem, refs)
		}

	case *exprpb.Expr_StructExpr:
		for _, entry := range e.GetStructExpr().GetEntries() {
			collectFieldRefs(entry.GetMapKey(), refs)
			collectFieldRefs(entry.GetValue(), refs)
		}

	case *exprpb.Expr_ComprehensionExpr:
		comp := e.GetComprehensionExpr()
		collectFieldRefs(comp.GetIterRange(), refs)
		collectFieldRefs(comp.GetAccuInit(), refs)
		collectFieldRefs(comp.GetLoopCondition(), refs)
		collectFieldRefs(comp.GetLoopStep(), refs)
		collectFieldRefs(comp.GetResult(), refs)
	}
}

func isRootIdent(e *exprpb.Expr) bool {
	return e.GetIdentExpr().GetName() == "_"
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
