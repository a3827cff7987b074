// Package controllers maps the JSON endpoints onto the services. Every
// action answers HTTP 200; failures carry success=false and a message.
package controllers

import (
	"github.com/shashiranjanraj/cafe/app/services"
	"github.com/shashiranjanraj/cafe/pkg/ctx"
)

// fail reports err to the client: a rule violation verbatim, anything else
// as fallback. Infrastructure faults were already logged by the service.
func fail(c *ctx.Context, err error, fallback string) {
	c.Fail(services.PublicMessage(err, fallback))
}

// queryID reads the required ?id= parameter, answering the request itself
// when it is missing or malformed.
func queryID(c *ctx.Context) (uint, bool) {
	id, err := c.QueryUint("id")
	if err != nil {
		c.Fail("A valid id is required.")
		return 0, false
	}
	return id, true
}
