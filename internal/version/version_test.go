package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GitCommit)
	assert.NotEmpty(t, info.BuildDate)
	assert.NotEmpty(t, info.InstanceID)
	assert.NotEmpty(t, info.Hostname)

	again := GetInfo()
	assert.Equal(t, info.InstanceID, again.InstanceID, "instance id is generated once per process")
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v1.2.3", GitCommit: "abc1234", BuildDate: "2026-02-21T10:00:00Z"}
	assert.Equal(t, "deployverify v1.2.3 (commit: abc1234, built: 2026-02-21T10:00:00Z)", info.String())
}

func TestHostname_LambdaFunctionName(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "verify-deployment")
	assert.Equal(t, "verify-deployment", hostname())
}

func TestHostname_Fallback(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	assert.NotEmpty(t, hostname())
}
