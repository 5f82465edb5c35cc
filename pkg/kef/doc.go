// Package kef provides a client for controlling KEF wireless speakers
// (LS50 Wireless and compatible) over their TCP control port.
//
// # Basic Usage
//
//	ctx := context.Background()
//	speaker, err := kef.NewSpeaker("192.168.1.40")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	volume, err := speaker.GetVolume(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// The client can be configured using functional options:
//
//	speaker, err := kef.NewSpeaker("192.168.1.40",
//	    kef.WithMaximumVolume(0.5),
//	    kef.WithVolumeStep(0.05),
//	    kef.WithLogger(slog.Default()),
//	)
//
// # Protocol
//
// The speaker exposes two registers on TCP port 50001: the volume
// register and a combined source/standby register. Each operation
// opens a connection, performs a single request/response exchange and
// closes it, so a Speaker is safe for concurrent use. Failed exchanges
// return a *CommunicationError; pollers should treat that as the
// device being offline. The client never retries on its own.
package kef
