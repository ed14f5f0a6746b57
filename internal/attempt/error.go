package attempt

import "errors"

var ErrAttemptNotFound = errors.New("checkout attempt not found")
