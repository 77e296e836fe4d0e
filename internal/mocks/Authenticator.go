package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/muurk/camlight/internal/session"
)

type Authenticator struct {
	mock.Mock
}

func (_m *Authenticator) Authenticate(ctx context.Context) (*session.Session, error) {
	ret := _m.Called(ctx)

	var r0 *session.Session
	if rf, ok := ret.Get(0).(func(context.Context) *session.Session); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*session.Session)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
