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

// RollbackFields is a set of fields that are used to roll a policy back to
// a prior version. Reason is required: it becomes the new version's change
// description and is part of the permanent audit trail.
type RollbackFields struct {
	PolicyID        ID     `bson:"policy_id" validate:"required"`
	TargetVersionID ID     `bson:"target_version_id" validate:"required"`
	Reason          string `bson:"reason" validate:"required"`
	RequestedBy     ID     `bson:"requested_by" validate:"required"`
}
