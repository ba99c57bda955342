package services

import "errors"

var errMissingEventData = errors.New("event has no data object")
