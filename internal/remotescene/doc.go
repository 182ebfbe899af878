// Package remotescene implements scene.Graph on top of a host bridge
// reached over socket.io. Every Graph call is one request/reply exchange:
// the client emits a "scene:call" event carrying a Request and waits for
// the matching "scene:reply:<id>" event carrying a Reply.
//
// Serve is the bridge side of the protocol. It executes a Request against
// any scene.Graph and is used by Loopback to run the full wire path
// in-process.
package remotescene
