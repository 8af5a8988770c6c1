package offgrid

import (
	"fmt"
	"strings"

	"github.com/tanema/gween/ease"
)

// namedEases maps the easing vocabulary used in effect configuration to
// gween easing functions. The "powerN" family follows the usual convention
// power1 = quad, power2 = cubic, power3 = quart, power4 = quint.
var namedEases = map[string]ease.TweenFunc{
	"none":   ease.Linear,
	"linear": ease.Linear,

	"power1.in":    ease.InQuad,
	"power1.out":   ease.OutQuad,
	"power1.inout": ease.InOutQuad,
	"power2.in":    ease.InCubic,
	"power2.out":   ease.OutCubic,
	"power2.inout": ease.InOutCubic,
	"power3.in":    ease.InQuart,
	"power3.out":   ease.OutQuart,
	"power3.inout": ease.InOutQuart,
	"power4.in":    ease.InQuint,
	"power4.out":   ease.OutQuint,
	"power4.inout": ease.InOutQuint,

	"sine.in":    ease.InSine,
	"sine.out":   ease.OutSine,
	"sine.inout": ease.InOutSine,
	"expo.in":    ease.InExpo,
	"expo.out":   ease.OutExpo,
	"expo.inout": ease.InOutExpo,
	"circ.in":    ease.InCirc,
	"circ.out":   ease.OutCirc,
	"circ.inout": ease.InOutCirc,
	"back.in":    ease.InBack,
	"back.out":   ease.OutBack,
	"back.inout": ease.InOutBack,

	"bounce.out":  ease.OutBounce,
	"elastic.out": ease.OutElastic,
}

// ParseEase resolves an easing name such as "power3.out" or "sine.inOut".
// Names are case-insensitive; a bare family ("power2") means its ".out" form.
func ParseEase(name string) (ease.TweenFunc, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return ease.OutQuad, nil
	}
	if fn, ok := namedEases[key]; ok {
		return fn, nil
	}
	if fn, ok := namedEases[key+".out"]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("offgrid: unknown ease %q", name)
}

// easeOr resolves name and falls back to def when the name is unknown.
func easeOr(name string, def ease.TweenFunc) ease.TweenFunc {
	fn, err := ParseEase(name)
	if err != nil {
		return def
	}
	return fn
}
