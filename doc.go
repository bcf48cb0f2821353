// The [echo] package is a client SDK for the ECHO backend-as-a-service REST API.
//
// # Client
//
// Everything starts from a [Client] created with [New]. The [Config] carries the
// app domain, the app id and key, and an optional member access token. There is
// no package-level state, so several clients for different apps can coexist.
//
// # Resources
//
// Each resource kind is its own type: [Entry], [Record], [Category], [Group],
// [Member], [PushNotification] and [Mailmag]. They share one core that owns a
// [models.Document] and a mutex, and they expose the same three operations:
//
//   - Fetch replaces the local document with the server's copy.
//   - Push creates the resource when it has no refid yet, or updates it otherwise.
//   - Delete removes it from the server.
//
// Every operation has a blocking form that takes a [context.Context] and an
// Async form that returns a [future.Future].
//
// Fields are read and written through the embedded [models.Document]. Files,
// dates and references to other resources are decoded into [models.FileRef],
// [models.DateValue] and [models.InstanceRef]. See the
// [github.com/echopf/echo.go/pkg/models] package for the conversion rules.
//
// # Lists and trees
//
// [FindEntries], [FindRecords] and [FindMembers] return one page of resources
// with its [Pagination]. [CategoriesMap] and [GroupsMap] rebuild the category and
// group hierarchies, either whole or below one node.
//
// # Transport
//
// Requests go through a [connection.Transport]. [New] uses the HTTP adapter in
// [github.com/echopf/echo.go/pkg/connection/http]; tests and custom stacks can
// supply their own with [NewWithTransport].
//
// # Push notifications
//
// A device registered through a member's [Installation] can receive the
// notifications distributed to it with the receiver in
// [github.com/echopf/echo.go/pkg/push].
package echo
