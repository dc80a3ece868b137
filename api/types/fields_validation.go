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

package types

import (
	"fmt"
	"os"

	"github.com/polido-team/polido/internal/validation"
)

func init() {
	if err := validation.RegisterValidation(
		"policy_status",
		func(level validation.FieldLevel) bool {
			return PolicyStatus(level.Field().String()).IsValid()
		},
	); err != nil {
		fmt.Fprintln(os.Stderr, "fields validation: ", err)
		os.Exit(1)
	}
	if err := validation.RegisterTranslation(
		"policy_status",
		"given {0} is not a valid policy status",
	); err != nil {
		fmt.Fprintln(os.Stderr, "fields validation: ", err)
		os.Exit(1)
	}

	if err := validation.RegisterValidation(
		"comment_type",
		func(level validation.FieldLevel) bool {
			return CommentType(level.Field().String()).IsValid()
		},
	); err != nil {
		fmt.Fprintln(os.Stderr, "fields validation: ", err)
		os.Exit(1)
	}
	if err := validation.RegisterTranslation(
		"comment_type",
		"given {0} is not a valid comment type",
	); err != nil {
		fmt.Fprintln(os.Stderr, "fields validation: ", err)
		os.Exit(1)
	}
}

// Validate validates the VersionFields.
func (i *VersionFields) Validate() error {
	return validation.ValidateStruct(i)
}

// Validate validates the CommentFields.
func (i *CommentFields) Validate() error {
	return validation.ValidateStruct(i)
}

// Validate validates the RollbackFields.
func (i *RollbackFields) Validate() error {
	return validation.ValidateStruct(i)
}
