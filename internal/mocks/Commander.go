package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/muurk/camlight/internal/lighting"
)

type Commander struct {
	mock.Mock
}

func (_m *Commander) Name() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.String(0)
	}

	return r0
}
func (_m *Commander) HandleCommand(ctx context.Context, raw string) lighting.OperationResult {
	ret := _m.Called(ctx, raw)

	var r0 lighting.OperationResult
	if rf, ok := ret.Get(0).(func(context.Context, string) lighting.OperationResult); ok {
		r0 = rf(ctx, raw)
	} else {
		r0 = ret.Get(0).(lighting.OperationResult)
	}

	return r0
}
func (_m *Commander) Lighting(ctx context.Context) (*lighting.LightingState, error) {
	ret := _m.Called(ctx)

	var r0 *lighting.LightingState
	if rf, ok := ret.Get(0).(func(context.Context) *lighting.LightingState); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*lighting.LightingState)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
