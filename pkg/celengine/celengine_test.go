package celengine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateWithMapVariables(t *testing.T) {
	attrs := map[string]interface{}{
		"user":    map[string]interface{}{"type": "PEOPLE", "verified": true},
		"account": map[string]interface{}{"country": "TH"},
	}

	env, err := GetOrBuildEnv(attrs)
	require.NoError(t, err)

	ok, err := Evaluate(env, `user.type == "PEOPLE" && account.country == "TH"`, attrs)
	require.NoError(t, err)
	require.True(t, ok)

	attrs["account"] = map[string]interface{}{"country": "US"}
	ok, err = Evaluate(env, `user.type == "PEOPLE" && account.country == "TH"`, attrs)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEnvCacheKeyedByVariables(t *testing.T) {
	a, err := GetOrBuildEnv(map[string]interface{}{"x": "1"})
	require.NoError(t, err)
	b, err := GetOrBuildEnv(map[string]interface{}{"y": int64(1)})
	require.NoError(t, err)
	require.NotSame(t, a, b)

	ok, err := Evaluate(b, "y == 1", map[string]interface{}{"y": int64(1)})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestValidateExpression(t *testing.T) {
	env, err := GetOrBuildEnv(map[string]interface{}{"user": map[string]interface{}{}})
	require.NoError(t, err)

	require.NoError(t, ValidateExpression(env, `user.type == "PAGE"`))
	require.Error(t, ValidateExpression(env, `user.type ==`))
	require.Error(t, ValidateExpression(env, `"text"`))
}

func TestEvaluateNonBool(t *testing.T) {
	attrs := map[string]interface{}{"n": int64(2)}
	env, err := GetOrBuildEnv(attrs)
	require.NoError(t, err)

	_, err = Evaluate(env, "n + 1", attrs)
	require.Error(t, err)
}
