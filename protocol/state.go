// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package protocol

import (
	"fmt"
)

const (
	AgencyNone   uint = 0
	AgencyClient uint = 1
	AgencyServer uint = 2
)

type State struct {
	Id   uint
	Name string
}

func NewState(id uint, name string) State {
	return State{
		Id:   id,
		Name: name,
	}
}

func (s State) String() string {
	return s.Name
}

type StateTransition struct {
	MsgType  uint8
	NewState State
}

type StateMapEntry struct {
	Agency      uint
	Transitions []StateTransition
}

type StateMap map[State]StateMapEntry

// Copy returns a copy of the state map. This is mostly for convenience,
// since we need to copy the state map in various places
func (s StateMap) Copy() StateMap {
	ret := StateMap{}
	for k, v := range s {
		ret[k] = v
	}
	return ret
}

// Transition returns the state reached from the current state when a message of
// the given type is sent or received
func (s StateMap) Transition(current State, msgType uint8) (State, error) {
	entry, ok := s[current]
	if !ok {
		return current, fmt.Errorf("%w: unknown state %s", ErrInvariantViolation, current)
	}
	for _, transition := range entry.Transitions {
		if transition.MsgType == msgType {
			return transition.NewState, nil
		}
	}
	return current, fmt.Errorf(
		"%w: message type %d not allowed in state %s",
		ErrProtocolViolation,
		msgType,
		current,
	)
}

// IsDone returns true when nobody holds agency in the given state
func (s StateMap) IsDone(current State) bool {
	entry, ok := s[current]
	return ok && entry.Agency == AgencyNone
}
