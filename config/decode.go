package config

import (
	"bytes"
	"errors"
	"io"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pelletier/go-toml/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"gopkg.in/yaml.v3"
)

// Variables and functions available to HCL expressions.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"pi": cty.NumberFloatVal(math.Pi),
		},
		Functions: map[string]function.Function{
			"radians": radiansFunc,
		},
	}
}

// Convert degrees to radians.
var radiansFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "degrees", Type: cty.Number},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		deg, _ := args[0].AsBigFloat().Float64()
		return cty.NumberFloatVal(deg * math.Pi / 180), nil
	},
})

func decodeHCL(filename string, data []byte, fc *fileConfig) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return errors.New(diags.Error())
	}

	diags = gohcl.DecodeBody(file.Body, evalContext(), fc)
	if diags.HasErrors() {
		return errors.New(diags.Error())
	}
	return nil
}

func decodeYAML(data []byte, fc *fileConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(fc)
	// An empty document leaves every default in place
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func decodeTOML(data []byte, fc *fileConfig) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(fc)
}
