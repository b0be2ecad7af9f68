package types

// IsAssignable reports whether a value of type src may be assigned to a
// location of type dst (spec.md §4.3 structural typing; nominal for
// classes, structural for interfaces/records/functions). This mirrors the
// is-subclass-of style hierarchy walk internal/interp/types.ClassRegistry
// uses for DWScript, generalized to the wider structural surface JS/TS
// types require.
func IsAssignable(src, dst TypeInfo) bool {
	if dst == nil || src == nil {
		return false
	}
	if dst.Kind() == KindAny || dst.Kind() == KindUnknown {
		return true
	}
	if src.Kind() == KindAny {
		return true
	}
	if src.Kind() == KindNever {
		return true
	}
	if Identical(src, dst) {
		return true
	}

	if s, ok := src.(UnionType); ok {
		for _, m := range s.Members {
			if !IsAssignable(m, dst) {
				return false
			}
		}
		return true
	}

	switch d := dst.(type) {
	case UnionType:
		for _, m := range d.Members {
			if IsAssignable(src, m) {
				return true
			}
		}
		return false
	}

	switch src.(type) {
	case StringLiteralType:
		if dst.Kind() == KindString {
			return true
		}
	case NumberLiteralType:
		if dst.Kind() == KindNumber {
			return true
		}
	case BooleanLiteralType:
		if dst.Kind() == KindBoolean {
			return true
		}
	}

	switch d := dst.(type) {
	case InstanceType:
		s, ok := src.(InstanceType)
		if !ok {
			return false
		}
		return s.Class.IsSubclassOf(d.Class)
	case ArrayType:
		s, ok := src.(ArrayType)
		if !ok {
			return false
		}
		return IsAssignable(s.Elem, d.Elem)
	case TupleType:
		s, ok := src.(TupleType)
		if !ok {
			return false
		}
		if len(s.Elements) != len(d.Elements) {
			return false
		}
		for i := range d.Elements {
			if !IsAssignable(s.Elements[i].Type, d.Elements[i].Type) {
				return false
			}
		}
		return true
	case RecordType:
		return recordAssignable(src, d)
	case *InterfaceInfo:
		return implementsShape(src, d)
	case FunctionType:
		s, ok := src.(FunctionType)
		if !ok {
			return false
		}
		return functionAssignable(s, d)
	}

	return false
}

// recordAssignable checks structural compatibility: src must carry every
// non-optional property dst requires, with a covariant property type.
// Excess properties are accepted here, and internal/typecheck does not
// reject them at object-literal sites either (ErrExcessProperty is never
// reported).
func recordAssignable(src TypeInfo, dst RecordType) bool {
	props := shapeProperties(src)
	if props == nil {
		return false
	}
	byName := make(map[string]PropertyInfo, len(props))
	for _, p := range props {
		byName[p.Name] = p
	}
	for _, want := range dst.Properties {
		got, ok := byName[want.Name]
		if !ok {
			if want.Optional {
				continue
			}
			return false
		}
		if !IsAssignable(got.Type, want.Type) {
			return false
		}
	}
	return true
}

func implementsShape(src TypeInfo, iface *InterfaceInfo) bool {
	switch s := src.(type) {
	case InstanceType:
		for _, impl := range s.Class.Implements {
			if impl == iface || impl.Name == iface.Name {
				return true
			}
		}
		return recordAssignable(src, interfaceAsRecord(iface))
	case *InterfaceInfo:
		return recordAssignable(src, interfaceAsRecord(iface))
	default:
		return recordAssignable(src, interfaceAsRecord(iface))
	}
}

func interfaceAsRecord(iface *InterfaceInfo) RecordType {
	return RecordType{Properties: iface.Properties}
}

// shapeProperties extracts the property list of any structurally-shaped
// TypeInfo (record, interface, or class instance), or nil if src has no
// property shape at all.
func shapeProperties(src TypeInfo) []PropertyInfo {
	switch s := src.(type) {
	case RecordType:
		return s.Properties
	case *InterfaceInfo:
		return s.Properties
	case InstanceType:
		props := make([]PropertyInfo, 0, len(s.Class.Fields))
		for cur := s.Class; cur != nil; cur = cur.Super {
			for _, f := range cur.Fields {
				if !f.Static {
					props = append(props, PropertyInfo{Name: f.Name, Type: f.Type, Readonly: f.Readonly})
				}
			}
		}
		return props
	default:
		return nil
	}
}

// functionAssignable uses parameter contravariance / return covariance;
// unlike TypeScript's method-parameter bivariance, a parameter that is only
// covariantly compatible is rejected.
func functionAssignable(src, dst FunctionType) bool {
	if len(src.Params) < requiredParamCount(dst) {
		return false
	}
	for i, dp := range dst.Params {
		if i >= len(src.Params) {
			break
		}
		if !IsAssignable(dp.Type, src.Params[i].Type) {
			return false
		}
	}
	return IsAssignable(src.Return, dst.Return)
}

func requiredParamCount(f FunctionType) int {
	n := 0
	for _, p := range f.Params {
		if p.Optional || p.Rest || p.Default {
			break
		}
		n++
	}
	return n
}

// Identical reports structural/nominal equality, used as the fast path in
// IsAssignable and by internal/typecheck to merge equal branch types.
func Identical(a, b TypeInfo) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case primitive:
		return true
	case StringLiteralType:
		return av.Value == b.(StringLiteralType).Value
	case NumberLiteralType:
		return av.Value == b.(NumberLiteralType).Value
	case BooleanLiteralType:
		return av.Value == b.(BooleanLiteralType).Value
	case InstanceType:
		bv := b.(InstanceType)
		return av.Class == bv.Class || av.Class.Name == bv.Class.Name
	case ArrayType:
		return Identical(av.Elem, b.(ArrayType).Elem)
	case *ClassInfo:
		bv := b.(*ClassInfo)
		return av == bv || av.Name == bv.Name
	case *InterfaceInfo:
		bv := b.(*InterfaceInfo)
		return av == bv || av.Name == bv.Name
	case *EnumType:
		bv := b.(*EnumType)
		return av == bv || av.Name == bv.Name
	default:
		return a.String() == b.String()
	}
}
