package push

import "errors"

var (
	ErrEmptyEndpoint    = errors.New("push: endpoint URL is required")
	ErrEmptyUserID      = errors.New("push: user ID is required")
	ErrEmptyKeys        = errors.New("push: subscription keys are required")
	ErrStoreUnavailable = errors.New("push: subscription store unavailable")
	ErrEndpointGone     = errors.New("push: endpoint no longer exists")
	ErrSendFailed       = errors.New("push: send failed")
)
