// Package offgrid is a retained element tree for scroll-driven, animated
// landing pages on [Ebitengine].
//
// A [Document] owns a tree of [Element] values rooted at its body, the
// scroll position, a [TweenEngine], a [ScrollObserver] and pointer input.
// Everything runs on the Ebitengine update goroutine inside
// [Document.Advance]; other goroutines talk to it through [Document.OnFrame]
// hooks.
//
// # Quick start
//
//	doc := offgrid.NewDocument(1280, 800)
//	box := offgrid.NewBox("card", 300, 200, offgrid.Hex("#00ff88"))
//	box.SetPosition(100, 900)
//	doc.Body().AppendChild(box)
//
//	ch := offgrid.NewChoreographer(doc, offgrid.DefaultEffectConfig())
//	scope := ch.Scope("cards")
//	scope.Reveal([]*offgrid.Element{box}, ch.Config().BentoReveal)
//	defer scope.Close()
//
//	if err := offgrid.Run(doc, offgrid.RunConfig{Title: "cards"}); err != nil {
//		log.Fatal(err)
//	}
//
// # Elements
//
// Elements are boxes, text, procedural patterns or embedded [Viewer] scenes.
// Layout fields (X, Y, Width, Height, Rotation, skew) place an element in its
// parent; [Motion], Alpha and Clip are the animated layer on top. Fixed
// elements ignore every ancestor transform, including scrolling.
//
// # Scroll triggers
//
// [ScrollObserver.Observe] watches an element's layout position against the
// viewport using offsets such as "top 80%" or "+=80%". Triggers report
// progress, enter and leave crossings, and can scrub with a lag.
//
// # Tweens
//
// [TweenEngine] interpolates [Props] through [gween] easing functions.
// [ParseEase] understands names such as "power3.out" and "sine.inOut".
//
// # Effects
//
// A [Choreographer] hands out [Scope] values. Effects registered on a scope
// (reveal, parallax, tilt, magnetic, spotlight, glitch, loop) are all
// released by [Scope.Close], which also restores the animated properties of
// every element the scope touched.
//
// # Smoke runs
//
// [LoadSmokeScript] reads a YAML script of pointer moves, clicks, scrolls
// and screenshots; attach it with [Document.SetSmokeRunner] and the run
// ends the game loop when done.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package offgrid
