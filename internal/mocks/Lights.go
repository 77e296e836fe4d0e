package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/muurk/camlight/internal/lighting"
	"github.com/muurk/camlight/internal/session"
)

type Lights struct {
	mock.Mock
}

func (_m *Lights) SetLight(ctx context.Context, sess *session.Session, mode lighting.Mode, brightness int) lighting.OperationResult {
	ret := _m.Called(ctx, sess, mode, brightness)

	var r0 lighting.OperationResult
	if rf, ok := ret.Get(0).(func(context.Context, *session.Session, lighting.Mode, int) lighting.OperationResult); ok {
		r0 = rf(ctx, sess, mode, brightness)
	} else {
		r0 = ret.Get(0).(lighting.OperationResult)
	}

	return r0
}
func (_m *Lights) GetLighting(ctx context.Context, sess *session.Session) (*lighting.LightingState, error) {
	ret := _m.Called(ctx, sess)

	var r0 *lighting.LightingState
	if rf, ok := ret.Get(0).(func(context.Context, *session.Session) *lighting.LightingState); ok {
		r0 = rf(ctx, sess)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*lighting.LightingState)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *session.Session) error); ok {
		r1 = rf(ctx, sess)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
