// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the landing page.
	RouteRoot = "/"
	// RouteContact receives form submissions.
	RouteContact = "/contact"
	// RouteContactBlur validates a field that lost focus.
	RouteContactBlur = RouteContact + "/blur/{field}"
	// RouteContactInput re-validates a field marked invalid while the user types.
	RouteContactInput = RouteContact + "/input/{field}"

	// RouteHealth is the aggregate health endpoint.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness probe.
	RouteHealthLive = RouteHealth + "/live"
	// RouteHealthReady is the readiness probe.
	RouteHealthReady = RouteHealth + "/ready"

	// RouteStatic serves embedded assets.
	RouteStatic = "/static/*"
)

const (
	// headerDatastarRequest is set by the datastar client on every action request.
	headerDatastarRequest = "Datastar-Request"

	// maxSignalsBytes bounds the signals body of a datastar request.
	maxSignalsBytes = 64 << 10

	// pageTitle and pageDescription describe the landing page.
	pageTitle       = "Holding Devs | Software that keeps your business moving"
	pageDescription = "Holding Devs designs, builds and runs web platforms, internal tools and integrations."
)
