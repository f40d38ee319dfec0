package dnspod

import (
	"strings"

	"github.com/pkg/errors"
)

const RootMarker = "@"

// SplitDomain 解析完整域名，返回(子域名, 主域名).
//
//	sub.example.com             -> (sub, example.com)
//	deep.nested.sub.example.com -> (deep.nested.sub, example.com)
//	@.example.com               -> (@, example.com)
//	example.com                 -> (@, example.com)
//
// The last two labels are always taken as the root domain, so names under
// multi-label public suffixes are split wrongly: test.co.uk -> (test, co.uk).
func SplitDomain(fullDomain string) (subDomain, rootDomain string, err error) {
	parts := strings.Split(fullDomain, ".")
	if len(parts) < 2 {
		return "", "", errors.Errorf("invalid domain format: %s", fullDomain)
	}

	if root, ok := strings.CutPrefix(fullDomain, RootMarker+"."); ok {
		return RootMarker, root, nil
	}
	if len(parts) == 2 {
		return RootMarker, fullDomain, nil
	}

	n := len(parts)
	return strings.Join(parts[:n-2], "."), strings.Join(parts[n-2:], "."), nil
}
