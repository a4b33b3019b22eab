package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestJSONCodec_Registered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())
}

func TestJSONCodec_LoginResponseWireShape(t *testing.T) {
	c := jsonCodec{}

	b, err := c.Marshal(&LoginResponse{
		AccessToken: "a", RefreshToken: "r", TokenType: "Bearer",
		AccountID: "USER-1", FirstName: "Ada", LastName: "L", Email: "a@x.io", IsFederated: true,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"accessToken":"a","refreshToken":"r","tokenType":"Bearer","accountId":"USER-1",
		"firstName":"Ada","lastName":"L","email":"a@x.io","isFederated":true}`, string(b))
}

func TestJSONCodec_UpdateProfileOmitsAbsentNames(t *testing.T) {
	c := jsonCodec{}

	var in UpdateProfileRequest
	require.NoError(t, c.Unmarshal([]byte(`{"lastName":"King"}`), &in))
	assert.Nil(t, in.FirstName)
	require.NotNil(t, in.LastName)
	assert.Equal(t, "King", *in.LastName)
}

func TestServiceDesc_MethodNames(t *testing.T) {
	names := make([]string, 0, len(ServiceDesc.Methods))
	for _, m := range ServiceDesc.Methods {
		names = append(names, "/"+ServiceName+"/"+m.MethodName)
	}
	assert.ElementsMatch(t, []string{
		FullMethodRegister, FullMethodLogin, FullMethodLogout, FullMethodChangePassword,
		FullMethodGetProfile, FullMethodUpdateProfile, FullMethodPing,
	}, names)
}
