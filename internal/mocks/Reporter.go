package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/muurk/camlight/internal/status"
)

type Reporter struct {
	mock.Mock
}

func (_m *Reporter) Report(u status.Update) {
	_m.Called(u)
}
