// Package events provides a small in-process publish/subscribe mechanism.
//
// Services emit events such as UserRegistered without knowing which
// handlers consume them; the registration confirmation mailer is the main
// subscriber.
package events
