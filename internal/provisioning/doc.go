// Package provisioning holds the domain logic of a container
// provisioning run: input validation against the live node state,
// storage role negotiation, the session that accumulates accepted
// answers, and the pipeline that turns a session into a running
// container.
package provisioning
