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

package mockpeer

import (
	"errors"
	"net"
	"sync"
)

// Server accepts TCP connections on a loopback address and runs the same
// conversation on each of them
type Server struct {
	listener     net.Listener
	conversation []ConversationEntry
	acceptDone   chan struct{}
	waitGroup    sync.WaitGroup
	mutex        sync.Mutex
	conns        []net.Conn
	errs         []error
}

// NewServer starts listening on a random loopback port
func NewServer(conversation []ConversationEntry) (*Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &Server{
		listener:     listener,
		conversation: conversation,
		acceptDone:   make(chan struct{}),
	}
	go s.acceptLoop()
	return s, nil
}

// Addr returns the address the server listens on in host:port form
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close stops the listener, closes all accepted connections and returns the
// errors from the conversations that had run
func (s *Server) Close() error {
	err := s.listener.Close()
	<-s.acceptDone
	s.mutex.Lock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.mutex.Unlock()
	s.waitGroup.Wait()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return errors.Join(append([]error{err}, s.errs...)...)
}

func (s *Server) acceptLoop() {
	defer close(s.acceptDone)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mutex.Lock()
		s.conns = append(s.conns, conn)
		s.mutex.Unlock()
		s.waitGroup.Add(1)
		go func() {
			defer s.waitGroup.Done()
			if err := runConversation(conn, s.conversation); err != nil {
				s.mutex.Lock()
				s.errs = append(s.errs, err)
				s.mutex.Unlock()
			}
		}()
	}
}
