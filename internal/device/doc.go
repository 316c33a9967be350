// Package device defines the MQTT surface of the remote thermal-camera
// device: its topic catalogue, its JSON payload shapes, and an
// in-memory tracker for the status feed.
//
// The device is a black box reachable only through topic semantics. It
// streams telemetry to sensors/thermal_stream, announces itself on the
// retained status topic, reports faults on the error topic, and accepts
// configuration, network and WiFi management commands on the rpi/*
// request topics, answering on the matching response topics.
//
// StatusTracker is a connectivity listener: it receives every inbound
// message from the shared connection, keeps only the ones it cares
// about, and maintains the last known status and error per device for
// the UI layer to poll.
package device
