// Package core defines the shared data model and collaborator interfaces of
// RegMesh: turn requests and user profiles, the four-case outbound chunk
// protocol, provider-level stream events and tool calls, captured concepts,
// resolved graph nodes, the domain agent capability and the conversation
// context store. Implementations live in sibling packages; core stays free
// of provider and storage dependencies.
package core
