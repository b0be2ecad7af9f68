package typecheck

import (
	"fmt"

	"github.com/scriptlang/tsforge/internal/ast"
	"github.com/scriptlang/tsforge/internal/types"
)

// Checker performs two-pass static type checking over a parsed Program and
// produces a frozen types.TypeMap, grounded on internal/semantic.Analyzer's
// registry-plus-Analyze(program) shape in the teacher, restructured around
// the structural type system this spec requires instead of DWScript's
// nominal-record Pascal type model.
type Checker struct {
	env         *TypeEnv
	typeMap     *types.TypeMap
	diagnostics Diagnostics

	classes    map[string]*types.ClassInfo
	interfaces map[string]*types.InterfaceInfo
	enums      map[string]*types.EnumType
	aliases    map[string]ast.TypeExpr // unresolved RHS, resolved lazily to break cycles
	namespaces map[string]*types.NamespaceType

	currentFunctionReturn types.TypeInfo
	currentFunctionAsync  bool
	loopDepth             int
	labelStack            []string
}

// NewChecker returns a Checker with an empty global scope. Callers should
// call RegisterGlobal for every ambient builtin (console, Math, globalThis
// members, and so on) before calling Check.
func NewChecker() *Checker {
	return &Checker{
		env:        NewTypeEnv(),
		typeMap:    types.NewTypeMap(),
		classes:    make(map[string]*types.ClassInfo),
		interfaces: make(map[string]*types.InterfaceInfo),
		enums:      make(map[string]*types.EnumType),
		aliases:    make(map[string]ast.TypeExpr),
		namespaces: make(map[string]*types.NamespaceType),
	}
}

// RegisterGlobal binds an ambient name (a builtin function, namespace
// object, or global constant) into the top-level scope before checking
// begins.
func (c *Checker) RegisterGlobal(name string, typ types.TypeInfo) {
	c.env.Define(name, typ)
}

// Check type-checks an entire program and returns the resulting
// diagnostics (empty if the program is well-typed) along with the
// TypeMap the interpreter and emitter consult afterward.
func (c *Checker) Check(program *ast.Program) (Diagnostics, *types.TypeMap) {
	c.collectSignatures(program.Statements)
	for _, stmt := range program.Statements {
		c.checkStmt(stmt, c.env)
	}
	return c.diagnostics, c.typeMap
}

func (c *Checker) errorAt(n ast.Node, kind ErrorKind, format string, args ...any) {
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pos:     n.Pos(),
	})
}

func (c *Checker) hintAt(n ast.Node, kind ErrorKind, format string, args ...any) {
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Pos:     n.Pos(),
		Hint:    true,
	})
}

// collectSignatures is the first pass (spec.md §4.3 two-pass checking): it
// installs a *types.ClassInfo shell for every class, an InterfaceInfo,
// EnumType or alias TypeExpr for every interface/enum/alias, and a
// FunctionType for every function declared at this level, before any body
// is checked, so forward and mutually
// recursive references resolve. Nested block scopes run their own
// collectSignatures over their own statement lists when checkStmt
// descends into them.
func (c *Checker) collectSignatures(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.ClassDecl:
			c.classes[s.Name] = &types.ClassInfo{Name: s.Name, Abstract: s.Abstract}
		case *ast.InterfaceDecl:
			if existing, ok := c.interfaces[s.Name]; ok {
				c.mergeInterface(existing, s)
			} else {
				c.interfaces[s.Name] = &types.InterfaceInfo{Name: s.Name}
			}
		case *ast.Enum:
			c.enums[s.Name] = c.buildEnumType(s)
		case *ast.TypeAlias:
			c.aliases[s.Name] = s.Value
		case *ast.FunctionDecl:
			if s.Body != nil { // skip overload signatures in the declared binding
				c.env.Define(s.Name, c.resolveFunctionSignature(s))
			}
		case *ast.Namespace:
			c.namespaces[s.Name] = &types.NamespaceType{Name: s.Name, Members: make(map[string]types.TypeInfo)}
		}
	}

	// Second half of pass one: now that every class name has a
	// ClassInfo shell, fill in member shapes (fields/methods/super)
	// so method bodies in pass two can resolve sibling classes.
	for _, stmt := range stmts {
		if cd, ok := stmt.(*ast.ClassDecl); ok {
			c.populateClassSignature(cd)
		}
	}
}

func (c *Checker) mergeInterface(existing *types.InterfaceInfo, decl *ast.InterfaceDecl) {
	for _, m := range decl.Members {
		existing.Properties = append(existing.Properties, types.PropertyInfo{
			Name: m.Name, Type: c.resolveTypeExpr(m.TypeAnn), Optional: m.Optional, Readonly: m.Readonly,
		})
	}
}

func (c *Checker) populateClassSignature(decl *ast.ClassDecl) {
	info := c.classes[decl.Name]
	if decl.Extends != nil {
		if super, ok := c.classes[decl.Extends.Name]; ok {
			info.Super = super
		}
	}
	for _, impl := range decl.Implements {
		if iface, ok := c.interfaces[impl.Name]; ok {
			info.Implements = append(info.Implements, iface)
		}
	}
	for _, member := range decl.Members {
		switch m := member.(type) {
		case *ast.FieldDecl:
			info.Fields = append(info.Fields, types.FieldInfo{
				Name: m.Name, Type: c.resolveTypeExpr(m.TypeAnn), Readonly: m.Readonly,
				Static: m.Static, AccessMod: m.AccessMod, Abstract: m.Abstract,
			})
		case *ast.Accessor:
			sig := types.FunctionType{Params: c.resolveParams(m.Params), Return: c.resolveTypeExpr(m.ReturnType), Async: m.Async, Generator: m.Generator}
			if m.Kind == ast.AccessorConstructor {
				info.Constructor = &sig
				continue
			}
			info.Methods = append(info.Methods, types.MethodInfo{
				Name: m.Name, Signature: sig, Static: m.Static, AccessMod: m.AccessMod,
				Abstract: m.Abstract, IsGetter: m.Kind == ast.AccessorGet, IsSetter: m.Kind == ast.AccessorSet,
			})
		}
	}
}

func (c *Checker) buildEnumType(decl *ast.Enum) *types.EnumType {
	e := &types.EnumType{Name: decl.Name, Const: decl.Kind == ast.EnumConst}
	next := 0.0
	for _, m := range decl.Members {
		mi := types.EnumMemberInfo{Name: m.Name}
		switch v := m.Value.(type) {
		case *ast.Literal:
			if v.Kind == ast.LitString {
				mi.IsString = true
				mi.StringValue = v.Str
			} else if v.Kind == ast.LitNumber {
				mi.NumValue = v.Num
				next = v.Num + 1
			}
		default:
			mi.NumValue = next
			next++
		}
		e.Members = append(e.Members, mi)
	}
	return e
}

func (c *Checker) resolveFunctionSignature(decl *ast.FunctionDecl) types.FunctionType {
	typeParams := make([]string, len(decl.TypeParams))
	for i, tp := range decl.TypeParams {
		typeParams[i] = tp.Name
	}
	return types.FunctionType{
		TypeParams: typeParams,
		Params:     c.resolveParams(decl.Params),
		Return:     c.resolveTypeExpr(decl.ReturnType),
		Async:      decl.Async,
		Generator:  decl.Generator,
	}
}

func (c *Checker) resolveParams(params []ast.Param) []types.ParamInfo {
	out := make([]types.ParamInfo, len(params))
	for i, p := range params {
		out[i] = types.ParamInfo{
			Name: p.Name, Type: c.resolveTypeExpr(p.TypeAnn),
			Optional: p.Optional, Rest: p.Rest, Default: p.Default != nil,
		}
	}
	return out
}
