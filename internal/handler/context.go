package handler

type ContextKey string

var (
	PartnerCtxKey ContextKey = "partner"
	LocationCtx   ContextKey = "location"
	ResourceCtx   ContextKey = "resource"
	ClosureCtx    ContextKey = "closure"
)
