// Package model defines the resolved routing model handed to emission.
//
// A compilation pass produces one EndpointGroup per qualifying declared type.
// Groups and their descriptors are built once by package assemble and are
// treated as immutable afterwards.
package model
