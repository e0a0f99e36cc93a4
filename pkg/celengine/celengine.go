package celengine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"go.uber.org/zap"
)

var (
	envCache     = sync.Map{}
	programCache = sync.Map{}
)

// GetOrBuildEnv caches environments by the set of variable names and their
// declared types.
func GetOrBuildEnv(attrs map[string]interface{}) (*cel.Env, error) {
	key := envKey(attrs)
	if v, ok := envCache.Load(key); ok {
		return v.(*cel.Env), nil
	}

	env, err := BuildCelEnvFromAttributes(attrs)
	if err == nil {
		envCache.Store(key, env)
	}

	return env, err
}

func envKey(attrs map[string]interface{}) string {
	parts := make([]string, 0, len(attrs))
	for k, v := range attrs {
		parts = append(parts, k+"="+celType(v).String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func celType(val interface{}) *cel.Type {
	switch v := val.(type) {
	case string:
		return cel.StringType
	case int, int32, int64:
		return cel.IntType
	case float32, float64:
		return cel.DoubleType
	case bool:
		return cel.BoolType
	case time.Time:
		return cel.TimestampType
	case []interface{}:
		if len(v) > 0 {
			if _, ok := v[0].(map[string]interface{}); ok {
				return cel.ListType(cel.MapType(cel.StringType, cel.DynType))
			}
		}
		return cel.ListType(cel.DynType)
	case []map[string]interface{}:
		return cel.ListType(cel.MapType(cel.StringType, cel.DynType))
	case map[string]interface{}:
		return cel.MapType(cel.StringType, cel.DynType)
	default:
		return cel.DynType
	}
}

func BuildCelEnvFromAttributes(attrs map[string]interface{}) (*cel.Env, error) {
	variables := make([]cel.EnvOption, 0, len(attrs))
	for key, val := range attrs {
		variables = append(variables, cel.Variable(key, celType(val)))
	}

	return cel.NewEnv(variables...)
}

func StructToMap(s any) map[string]any {
	if s == nil {
		return map[string]any{}
	}

	b, err := json.Marshal(s)
	if err != nil {
		zap.L().Debug("failed StructToMap Marshal", zap.Error(err))
		return map[string]interface{}{}
	}

	var result map[string]interface{}
	if err := json.Unmarshal(b, &result); err != nil {
		zap.L().Debug("failed StructToMap Unmarshal", zap.Error(err))
		return map[string]interface{}{}
	}

	return result
}

// ValidateExpression compiles expr and requires a boolean result type.
func ValidateExpression(env *cel.Env, expr string) error {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return issues.Err()
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return fmt.Errorf("expression must return bool, got %s", out)
	}
	return nil
}

func program(env *cel.Env, expr string) (cel.Program, error) {
	key := fmt.Sprintf("%p|%s", env, expr)
	if v, ok := programCache.Load(key); ok {
		return v.(cel.Program), nil
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}

	programCache.Store(key, prg)
	return prg, nil
}

func Evaluate(env *cel.Env, expr string, attrs map[string]interface{}) (bool, error) {
	prg, err := program(env, expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(attrs)
	if err != nil {
		return false, err
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expected bool from expression, got %T (%v)", out.Value(), out.Value())
	}

	return b, nil
}
