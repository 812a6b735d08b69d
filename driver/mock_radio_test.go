/*
Copyright (c) The mac154 Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Hand-written mock of Radio, laid out the way MockGen lays out a mock
// for github.com/go154/mac154/driver (interfaces: Radio).

package driver

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockRadio is a mock of the Radio interface.
type MockRadio struct {
	ctrl     *gomock.Controller
	recorder *MockRadioMockRecorder
}

// MockRadioMockRecorder is the mock recorder for MockRadio.
type MockRadioMockRecorder struct {
	mock *MockRadio
}

// NewMockRadio creates a new mock instance.
func NewMockRadio(ctrl *gomock.Controller) *MockRadio {
	mock := &MockRadio{ctrl: ctrl}
	mock.recorder = &MockRadioMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRadio) EXPECT() *MockRadioMockRecorder {
	return m.recorder
}

// HWCapabilities mocks base method.
func (m *MockRadio) HWCapabilities() Capability {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "HWCapabilities")
	ret0, _ := ret[0].(Capability)
	return ret0
}

// HWCapabilities indicates an expected call of HWCapabilities.
func (mr *MockRadioMockRecorder) HWCapabilities() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "HWCapabilities", reflect.TypeOf((*MockRadio)(nil).HWCapabilities))
}

// SetChannel mocks base method.
func (m *MockRadio) SetChannel(ch uint16) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SetChannel", ch)
	ret0, _ := ret[0].(error)
	return ret0
}

// SetChannel indicates an expected call of SetChannel.
func (mr *MockRadioMockRecorder) SetChannel(ch interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetChannel", reflect.TypeOf((*MockRadio)(nil).SetChannel), ch)
}

// CCA mocks base method.
func (m *MockRadio) CCA() (CCAResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CCA")
	ret0, _ := ret[0].(CCAResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CCA indicates an expected call of CCA.
func (mr *MockRadioMockRecorder) CCA() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CCA", reflect.TypeOf((*MockRadio)(nil).CCA))
}

// Configure mocks base method.
func (m *MockRadio) Configure(kind ConfigureKind, value any) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Configure", kind, value)
	ret0, _ := ret[0].(error)
	return ret0
}

// Configure indicates an expected call of Configure.
func (mr *MockRadioMockRecorder) Configure(kind, value interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Configure", reflect.TypeOf((*MockRadio)(nil).Configure), kind, value)
}

// Send mocks base method.
func (m *MockRadio) Send(pkt []byte, timestampNS uint64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Send", pkt, timestampNS)
	ret0, _ := ret[0].(error)
	return ret0
}

// Send indicates an expected call of Send.
func (mr *MockRadioMockRecorder) Send(pkt, timestampNS interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Send", reflect.TypeOf((*MockRadio)(nil).Send), pkt, timestampNS)
}

// TimeReference mocks base method.
func (m *MockRadio) TimeReference() TimeReference {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "TimeReference")
	ret0, _ := ret[0].(TimeReference)
	return ret0
}

// TimeReference indicates an expected call of TimeReference.
func (mr *MockRadioMockRecorder) TimeReference() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TimeReference", reflect.TypeOf((*MockRadio)(nil).TimeReference))
}

// CurrentChannelPage mocks base method.
func (m *MockRadio) CurrentChannelPage() ChannelPage {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CurrentChannelPage")
	ret0, _ := ret[0].(ChannelPage)
	return ret0
}

// CurrentChannelPage indicates an expected call of CurrentChannelPage.
func (mr *MockRadioMockRecorder) CurrentChannelPage() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CurrentChannelPage", reflect.TypeOf((*MockRadio)(nil).CurrentChannelPage))
}

// VerifyChannel mocks base method.
func (m *MockRadio) VerifyChannel(ch uint16) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "VerifyChannel", ch)
	ret0, _ := ret[0].(bool)
	return ret0
}

// VerifyChannel indicates an expected call of VerifyChannel.
func (mr *MockRadioMockRecorder) VerifyChannel(ch interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "VerifyChannel", reflect.TypeOf((*MockRadio)(nil).VerifyChannel), ch)
}

// SupportedChannelRanges mocks base method.
func (m *MockRadio) SupportedChannelRanges() [][2]uint16 {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SupportedChannelRanges")
	ret0, _ := ret[0].([][2]uint16)
	return ret0
}

// SupportedChannelRanges indicates an expected call of SupportedChannelRanges.
func (mr *MockRadioMockRecorder) SupportedChannelRanges() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SupportedChannelRanges", reflect.TypeOf((*MockRadio)(nil).SupportedChannelRanges))
}
