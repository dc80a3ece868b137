/*
 * Copyright 2025 The Polido Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package types provides the types shared by the engine and its callers.
// This package is used by both the server packages and the presentation
// layer embedding the engine.
package types

import (
	"encoding/hex"
	"fmt"

	"github.com/rs/xid"

	"github.com/polido-team/polido/pkg/errors"
)

var (
	// ErrInvalidID is returned when the given ID is not a 12-byte hex string.
	ErrInvalidID = errors.InvalidArgument("invalid ID").WithCode("ErrInvalidID")
)

// ID represents ID of entity. It is the 24-character hexadecimal encoding
// of a 12-byte identifier, compatible with MongoDB ObjectIDs.
type ID string

// NewID creates a new random ID.
func NewID() ID {
	return IDFromBytes(xid.New().Bytes())
}

// String returns a string representation of this ID.
func (id ID) String() string {
	return string(id)
}

// Bytes returns bytes of decoded hexadecimal string representation of this ID.
func (id ID) Bytes() ([]byte, error) {
	decoded, err := hex.DecodeString(id.String())
	if err != nil {
		return nil, fmt.Errorf("decode hex string: %w", err)
	}
	return decoded, nil
}

// Validate returns error if this ID is invalid.
func (id ID) Validate() error {
	b, err := hex.DecodeString(id.String())
	if err != nil {
		return fmt.Errorf("%s: %w", id, ErrInvalidID)
	}

	if len(b) != 12 {
		return fmt.Errorf("%s: %w", id, ErrInvalidID)
	}

	return nil
}

// IDFromBytes returns ID represented by the encoded hexadecimal string from bytes.
func IDFromBytes(bytes []byte) ID {
	return ID(hex.EncodeToString(bytes))
}
