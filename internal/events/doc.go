// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package events carries domain events between the API and background
// consumers such as notification fan-out.
//
// The bus is a Watermill router over one of two transports:
//
//   - memory: an in-process GoChannel. Events are lost on restart.
//   - nats: a JetStream stream (optionally served by an embedded
//     nats-server) with one durable consumer per handler. Requires the
//     nats build tag.
//
// Every event is wrapped in an Event envelope whose Payload is one of the
// typed structs in this package, keyed by Event.Type:
//
//	job.published               JobPublished
//	application.submitted       ApplicationSubmitted
//	application.status_changed  ApplicationStatusChanged
//	message.sent                MessageSent
//	course.completed            CourseCompleted
//
// Handlers run behind Recoverer and Retry middleware. A handler error
// nacks the message; a payload that does not decode is acked and dropped.
//
// Usage:
//
//	bus, _ := events.NewBus(cfg.Events)
//	_ = bus.Subscribe("notify-jobs", events.TopicJobPublished, handler)
//	_ = bus.Start(ctx)
//	defer bus.Shutdown(context.Background())
//	_ = bus.Emit(ctx, events.TopicJobPublished, userID, events.JobPublished{...})
package events
