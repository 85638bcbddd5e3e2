package query

import (
	"strings"
	"testing"

	"github.com/oakwood-commons/opx/pkg/opcode"
)

var testColumns = []string{"name", "opcode", "gas", "description"}

func testRecord() opcode.Record {
	return opcode.Record{
		"name":        "ADD",
		"opcode":      "A0",
		"gas":         "18",
		"description": "Adds two integers and pushes the result.",
	}
}

func testDataset() *opcode.Dataset {
	return &opcode.Dataset{
		Name:     "testvm",
		SearchBy: "name",
		Columns: []opcode.Column{
			{Key: "name", Grouped: true},
			{Key: "opcode", Grouped: true},
			{Key: "gas"},
			{Key: "description"},
		},
		Records: []opcode.Record{
			{"name": "ADD", "opcode": "A0", "gas": "18", "description": "Adds two integers."},
			{"name": "SUB", "opcode": "A1", "gas": "18", "description": "Subtracts one integer from another."},
			{"name": "PUSHINT", "opcode": "7F", "gas": "26", "description": "Pushes an integer constant."},
		},
	}
}

func TestNew_CompileError(t *testing.T) {
	_, err := New(`_.name ==`, testColumns)
	if err == nil {
		t.Fatal("expected error for malformed expression")
	}
	if !strings.Contains(err.Error(), "compilation error") {
		t.Errorf("expected compilation error, got: %v", err)
	}
}

func TestNew_UnknownField(t *testing.T) {
	_, err := New(`_.bogus == "1"`, testColumns)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), `"bogus"`) {
		t.Errorf("error should name the unknown field, got: %v", err)
	}
	if !strings.Contains(err.Error(), "valid fields") || !strings.Contains(err.Error(), "name, opcode, gas, description") {
		t.Errorf("error should list the valid fields, got: %v", err)
	}
}

func TestNew_UnknownFieldInsideMacro(t *testing.T) {
	_, err := New(`["A0", "A1"].exists(x, x == _.bogus)`, testColumns)
	if err == nil {
		t.Fatal("expected error for unknown field inside macro")
	}
	if !strings.Contains(err.Error(), `"bogus"`) {
		t.Errorf("error should name the unknown field, got: %v", err)
	}
}

func TestNew_UnknownIndexedField(t *testing.T) {
	_, err := New(`_["bogus"] == "1"`, testColumns)
	if err == nil {
		t.Fatal("expected error for unknown indexed field")
	}
	if !strings.Contains(err.Error(), `"bogus"`) {
		t.Errorf("error should name the unknown field, got: %v", err)
	}
}

func TestNew_StaticNonBool(t *testing.T) {
	_, err := New(`1 + 2`, testColumns)
	if err == nil {
		t.Fatal("expected error for integer-typed expression")
	}
	if !strings.Contains(err.Error(), "must evaluate to a boolean") {
		t.Errorf("expected boolean type error, got: %v", err)
	}
}

func TestMatch_Expressions(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"field equality", `_.name == "ADD"`, true},
		{"field inequality", `_.name == "SUB"`, false},
		{"index form", `_["opcode"] == "A0"`, true},
		{"contains", `_.description.contains("integer")`, true},
		{"strings extension", `_.name.lowerAscii() == "add"`, true},
		{"numeric comparison", `int(_.gas) > 10`, true},
		{"conjunction", `_.name.startsWith("A") && int(_.gas) < 20`, true},
		{"list membership", `_.opcode in ["A0", "A1"]`, true},
		{"macro over literal list", `["ADD", "SUB"].exists(x, x == _.name)`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.expr, testColumns)
			if err != nil {
				t.Fatalf("New(%q) failed: %v", tt.expr, err)
			}
			got, err := f.Match(testRecord())
			if err != nil {
				t.Fatalf("Match failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestMatch_MissingFieldBindsEmpty(t *testing.T) {
	f, err := New(`_.gas == ""`, testColumns)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	r := opcode.Record{"name": "NOP", "opcode": "00"}
	got, err := f.Match(r)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if !got {
		t.Error("missing declared field should compare equal to the empty string")
	}
}

func TestMatch_NonBoolResult(t *testing.T) {
	f, err := New(`_.name`, testColumns)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = f.Match(testRecord())
	if err == nil {
		t.Fatal("expected error for string-valued expression")
	}
	if !strings.Contains(err.Error(), "must evaluate to a boolean") {
		t.Errorf("expected boolean type error, got: %v", err)
	}
}

func TestMatch_EvalError(t *testing.T) {
	f, err := New(`int(_.name) > 0`, testColumns)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = f.Match(testRecord())
	if err == nil {
		t.Fatal("expected error converting a mnemonic to int")
	}
	if !strings.Contains(err.Error(), "eval error") {
		t.Errorf("expected eval error, got: %v", err)
	}
}

func TestExpression(t *testing.T) {
	f, err := New(`_.name == "ADD"`, testColumns)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if f.Expression() != `_.name == "ADD"` {
		t.Errorf("Expression() = %q", f.Expression())
	}
}

func TestApply_KeepsMatchesInOrder(t *testing.T) {
	ds := testDataset()
	f, err := New(`int(_.gas) == 18`, ds.ColumnKeys())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	out, err := f.Apply(ds)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(out.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out.Records))
	}
	if out.Records[0].Get("name") != "ADD" || out.Records[1].Get("name") != "SUB" {
		t.Errorf("records out of order: %v, %v", out.Records[0], out.Records[1])
	}
	if out.Name != "testvm" || out.SearchBy != "name" {
		t.Error("dataset metadata should be preserved")
	}
	if len(ds.Records) != 3 {
		t.Error("source dataset should not be mutated")
	}
}

func TestApply_ErrorNamesRecord(t *testing.T) {
	ds := testDataset()
	ds.Records[1]["gas"] = "cheap"
	f, err := New(`int(_.gas) > 0`, ds.ColumnKeys())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = f.Apply(ds)
	if err == nil {
		t.Fatal("expected error for non-numeric gas value")
	}
	if !strings.Contains(err.Error(), `"SUB"`) {
		t.Errorf("error should name the failing record, got: %v", err)
	}
}
