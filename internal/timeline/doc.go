// Package timeline implements the Timestamp ordering algebra and the
// Call Log described in spec §3/§4.3: the ordered sequence of externally
// submitted invocations that the scheduler rewinds around and replays.
package timeline
