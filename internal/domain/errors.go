package domain

import "errors"

// 业务错误（handler 用 errors.Is 映射 HTTP 状态码）
var (
	// advisor / build configurator
	ErrEmptyCriteria    = errors.New("at least one criterion is required")
	ErrDuplicateItem    = errors.New("component is already in this option group")
	ErrNotInGroup       = errors.New("option item does not belong to this group")
	ErrInvalidSelection = errors.New("selected component is not offered by the option group")

	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDuplicateTag      = errors.New("tag is already attached to this product")
	ErrDuplicateName     = errors.New("name already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInUse             = errors.New("still referenced by other records")

	ErrInvalidCredentials = errors.New("invalid name or password")
	ErrUnauthorized       = errors.New("login required")
	ErrForbidden          = errors.New("permission denied")
)
