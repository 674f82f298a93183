package expr

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/google/cel-go/ext"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Strings(),
		ext.Lists(),

		// `attrHas` returns true if the attribute contains the given value.
		// A missing attribute key is never an error; it simply doesn't match.
		// Example: attrHas(attrs, "languages", "swift").
		cel.Function("attrHas",
			cel.Overload("attr_has",
				[]*cel.Type{
					cel.MapType(cel.StringType, cel.ListType(cel.StringType)),
					cel.StringType,
					cel.StringType,
				},
				cel.BoolType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					values, ok := attrValues(args[0], args[1])
					if !ok {
						return types.Bool(false)
					}

					want, ok := args[2].(types.String)
					if !ok {
						return types.NewErr("attrHas: invalid value argument")
					}

					return types.Bool(listContains(values, want))
				}),
			),
		),

		// `attrAny` returns true if the attribute's value set intersects the
		// given list of accepted values.
		// Example: attrAny(attrs, "project_size", ["medium", "large"]).
		cel.Function("attrAny",
			cel.Overload("attr_any",
				[]*cel.Type{
					cel.MapType(cel.StringType, cel.ListType(cel.StringType)),
					cel.StringType,
					cel.ListType(cel.StringType),
				},
				cel.BoolType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					values, ok := attrValues(args[0], args[1])
					if !ok {
						return types.Bool(false)
					}

					accepted, ok := args[2].(traits.Lister)
					if !ok {
						return types.NewErr("attrAny: invalid values argument")
					}

					it := accepted.Iterator()
					for it.HasNext() == types.True {
						want, ok := it.Next().(types.String)
						if !ok {
							continue
						}

						if listContains(values, want) {
							return types.Bool(true)
						}
					}

					return types.Bool(false)
				}),
			),
		),

		// `attrFlag` returns true if the boolean flag attribute is set to "true".
		// Example: attrFlag(attrs, "has_testing").
		cel.Function("attrFlag",
			cel.Overload("attr_flag",
				[]*cel.Type{
					cel.MapType(cel.StringType, cel.ListType(cel.StringType)),
					cel.StringType,
				},
				cel.BoolType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					values, ok := attrValues(args[0], args[1])
					if !ok {
						return types.Bool(false)
					}

					return types.Bool(listContains(values, types.String("true")))
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// attrValues looks up the attribute key in the attrs map, returning its value
// list. Missing keys report ok=false rather than erroring.
func attrValues(attrsVal, keyVal ref.Val) (traits.Lister, bool) {
	attrs, ok := attrsVal.(traits.Mapper)
	if !ok {
		return nil, false
	}

	key, ok := keyVal.(types.String)
	if !ok {
		return nil, false
	}

	value, found := attrs.Find(key)
	if !found {
		return nil, false
	}

	values, ok := value.(traits.Lister)
	if !ok {
		return nil, false
	}

	return values, true
}

func listContains(values traits.Lister, want types.String) bool {
	it := values.Iterator()
	for it.HasNext() == types.True {
		got, ok := it.Next().(types.String)
		if !ok {
			continue
		}

		if got == want {
			return true
		}
	}

	return false
}
