package resolver

//go:generate go run go.uber.org/mock/mockgen@v0.5.0 -destination resolver_mock.go -package resolver . IResolver

import "context"

// IResolver 获取本机公网IP
type IResolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}
