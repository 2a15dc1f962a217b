// Package swipe implements the one-card-at-a-time swipe session and the drag gesture that drives it.
//
// [Gesture] is pure: it maps horizontal displacement to a [models.Decision], a card rotation and an
// overlay opacity, all from the same threshold. [Session] owns the candidate queue and cursor;
// a like or skip decision commits exactly once and then clears the drag.
package swipe
