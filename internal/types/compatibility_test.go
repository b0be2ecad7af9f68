package types

import "testing"

func TestIsSubclassOf(t *testing.T) {
	object := &ClassInfo{Name: "Base"}
	person := &ClassInfo{Name: "Person", Super: object}
	employee := &ClassInfo{Name: "Employee", Super: person}
	unrelated := &ClassInfo{Name: "Point"}

	tests := []struct {
		name     string
		child    *ClassInfo
		parent   *ClassInfo
		expected bool
	}{
		{"direct parent", person, object, true},
		{"grandparent", employee, object, true},
		{"same class", person, person, true},
		{"unrelated classes", person, unrelated, false},
		{"reverse hierarchy", object, person, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.child.IsSubclassOf(tt.parent); got != tt.expected {
				t.Errorf("IsSubclassOf(%s, %s) = %v, want %v", tt.child.Name, tt.parent.Name, got, tt.expected)
			}
		})
	}
}

func TestIsAssignable_Primitives(t *testing.T) {
	if !IsAssignable(Number, Any) {
		t.Error("Number should be assignable to Any")
	}
	if !IsAssignable(Never, String) {
		t.Error("Never should be assignable to anything")
	}
	if IsAssignable(String, Number) {
		t.Error("String should not be assignable to Number")
	}
	if !IsAssignable(StringLiteralType{Value: "a"}, String) {
		t.Error("a string literal type should be assignable to string")
	}
}

func TestIsAssignable_Union(t *testing.T) {
	u := UnionType{Members: []TypeInfo{String, Number}}
	if !IsAssignable(String, u) {
		t.Error("String should be assignable to string|number")
	}
	if IsAssignable(Boolean, u) {
		t.Error("Boolean should not be assignable to string|number")
	}
	if !IsAssignable(u, UnionType{Members: []TypeInfo{String, Number, Boolean}}) {
		t.Error("a narrower union should be assignable to a wider one")
	}
}

func TestIsAssignable_Array(t *testing.T) {
	nums := ArrayType{Elem: Number}
	if !IsAssignable(nums, ArrayType{Elem: Number}) {
		t.Error("number[] should be assignable to number[]")
	}
	if IsAssignable(nums, ArrayType{Elem: String}) {
		t.Error("number[] should not be assignable to string[]")
	}
}

func TestIsAssignable_Instance(t *testing.T) {
	base := &ClassInfo{Name: "Animal"}
	dog := &ClassInfo{Name: "Dog", Super: base}
	if !IsAssignable(InstanceType{Class: dog}, InstanceType{Class: base}) {
		t.Error("a Dog instance should be assignable to Animal")
	}
	if IsAssignable(InstanceType{Class: base}, InstanceType{Class: dog}) {
		t.Error("an Animal instance should not be assignable to Dog")
	}
}

func TestIsAssignable_RecordStructural(t *testing.T) {
	shape := RecordType{Properties: []PropertyInfo{
		{Name: "x", Type: Number},
		{Name: "y", Type: Number, Optional: true},
	}}
	point := RecordType{Properties: []PropertyInfo{
		{Name: "x", Type: Number},
		{Name: "y", Type: Number},
		{Name: "label", Type: String},
	}}
	if !IsAssignable(point, shape) {
		t.Error("an excess-property record should still be structurally assignable")
	}
	missing := RecordType{Properties: []PropertyInfo{{Name: "x", Type: Number}}}
	if !IsAssignable(missing, shape) {
		t.Error("a record missing only the optional property should be assignable")
	}
}

func TestIsAssignable_Function(t *testing.T) {
	wide := FunctionType{Params: []ParamInfo{{Name: "a", Type: Any}}, Return: Void}
	narrow := FunctionType{Params: []ParamInfo{{Name: "a", Type: String}}, Return: Void}
	if !IsAssignable(wide, narrow) {
		t.Error("a function accepting any should be assignable where one accepting string is expected (contravariance)")
	}
}

func TestTypeMap_DefaultsToUnknown(t *testing.T) {
	tm := NewTypeMap()
	if got := tm.ExprType(nil); got != Unknown {
		t.Errorf("unset expr type = %v, want Unknown", got)
	}
}
