//go:build darwin && cgo

package ioreport

/*
#cgo LDFLAGS: -framework CoreFoundation -lIOReport
#include <stdint.h>
#include <stdlib.h>
#include <CoreFoundation/CoreFoundation.h>

typedef struct IOReportSubscription *IOReportSubscriptionRef;

extern CFMutableDictionaryRef IOReportCopyAllChannels(uint64_t, uint64_t);
extern CFMutableDictionaryRef IOReportCopyChannelsInGroup(CFStringRef, CFStringRef, uint64_t, uint64_t, uint64_t);
extern void IOReportMergeChannels(CFDictionaryRef, CFDictionaryRef, CFTypeRef);
extern IOReportSubscriptionRef IOReportCreateSubscription(void *, CFMutableDictionaryRef, CFMutableDictionaryRef *, uint64_t, CFTypeRef);
extern CFDictionaryRef IOReportCreateSamples(IOReportSubscriptionRef, CFMutableDictionaryRef, CFTypeRef);
extern CFDictionaryRef IOReportCreateSamplesDelta(CFDictionaryRef, CFDictionaryRef, CFTypeRef);
extern CFStringRef IOReportChannelGetGroup(CFDictionaryRef);
extern CFStringRef IOReportChannelGetSubGroup(CFDictionaryRef);
extern CFStringRef IOReportChannelGetChannelName(CFDictionaryRef);
extern CFStringRef IOReportChannelGetUnitLabel(CFDictionaryRef);
extern int64_t IOReportSimpleGetIntegerValue(CFDictionaryRef, int32_t);
*/
import "C"

import (
	"unsafe"

	"codeberg.org/mutker/socwatt/internal/errors"
)

const channelsKey = "IOReportChannels"

// Open returns the IOReport-backed telemetry provider.
func Open() (Provider, error) {
	return &darwinProvider{}, nil
}

type darwinProvider struct{}

func (*darwinProvider) Subscribe(requests []ChannelRequest) (Subscription, error) {
	errFactory := errors.New()

	desired, err := copyChannels(requests)
	if err != nil {
		return nil, err
	}

	if channelCount(C.CFDictionaryRef(desired)) == 0 {
		cfRelease(unsafe.Pointer(desired))
		return nil, errFactory.New(ErrEmptyChannelCatalog)
	}

	var subbed C.CFMutableDictionaryRef
	sub := C.IOReportCreateSubscription(nil, desired, &subbed, 0, nil)
	if sub == nil {
		cfRelease(unsafe.Pointer(desired))
		return nil, errFactory.New(ErrProviderUnavailable)
	}

	return &darwinSubscription{sub: sub, channels: desired}, nil
}

func copyChannels(requests []ChannelRequest) (C.CFMutableDictionaryRef, error) {
	errFactory := errors.New()

	if len(requests) == 0 {
		all := C.IOReportCopyAllChannels(0, 0)
		if all == nil {
			return nil, errFactory.New(ErrProviderUnavailable)
		}
		merged := C.CFDictionaryCreateMutableCopy(C.kCFAllocatorDefault,
			C.CFDictionaryGetCount(C.CFDictionaryRef(all)), C.CFDictionaryRef(all))
		cfRelease(unsafe.Pointer(all))

		return merged, nil
	}

	groups := make([]C.CFMutableDictionaryRef, 0, len(requests))
	for _, req := range requests {
		gname := cfStr(req.Group)
		var sname C.CFStringRef
		if req.Subgroup != "" {
			sname = cfStr(req.Subgroup)
		}

		chans := C.IOReportCopyChannelsInGroup(gname, sname, 0, 0, 0)
		cfRelease(unsafe.Pointer(gname))
		if sname != nil {
			cfRelease(unsafe.Pointer(sname))
		}
		if chans == nil {
			continue
		}
		groups = append(groups, chans)
	}

	if len(groups) == 0 {
		return nil, errFactory.New(ErrEmptyChannelCatalog)
	}

	base := groups[0]
	for _, chans := range groups[1:] {
		C.IOReportMergeChannels(C.CFDictionaryRef(base), C.CFDictionaryRef(chans), nil)
	}

	merged := C.CFDictionaryCreateMutableCopy(C.kCFAllocatorDefault,
		C.CFDictionaryGetCount(C.CFDictionaryRef(base)), C.CFDictionaryRef(base))
	for _, chans := range groups {
		cfRelease(unsafe.Pointer(chans))
	}

	return merged, nil
}

type darwinSubscription struct {
	sub      C.IOReportSubscriptionRef
	channels C.CFMutableDictionaryRef
}

func (s *darwinSubscription) Snapshot() (Snapshot, error) {
	ref := C.IOReportCreateSamples(s.sub, s.channels, nil)
	if ref == nil {
		return nil, errors.New().New(ErrSnapshotFailed)
	}

	return &darwinSnapshot{ref: ref}, nil
}

func (s *darwinSubscription) Delta(older, newer Snapshot, elapsedMS uint64) (*DeltaSnapshot, error) {
	errFactory := errors.New()

	prev, ok := older.(*darwinSnapshot)
	if !ok {
		return nil, errFactory.New(ErrDeltaFailed)
	}
	next, ok := newer.(*darwinSnapshot)
	if !ok {
		return nil, errFactory.New(ErrDeltaFailed)
	}

	diff := C.IOReportCreateSamplesDelta(prev.ref, next.ref, nil)
	if diff == nil {
		return nil, errFactory.New(ErrDeltaFailed)
	}

	entries := collectEntries(diff)
	release := func() {
		cfRelease(unsafe.Pointer(diff))
	}

	return NewDeltaSnapshot(entries, elapsedMS, release), nil
}

func (s *darwinSubscription) Close() error {
	if s.channels != nil {
		cfRelease(unsafe.Pointer(s.channels))
		s.channels = nil
	}
	if s.sub != nil {
		cfRelease(unsafe.Pointer(s.sub))
		s.sub = nil
	}

	return nil
}

type darwinSnapshot struct {
	ref C.CFDictionaryRef
}

func (s *darwinSnapshot) Release() {
	if s.ref != nil {
		cfRelease(unsafe.Pointer(s.ref))
		s.ref = nil
	}
}

// darwinCounter keeps the delta dictionary's channel item alive only by
// reference; the enclosing DeltaSnapshot owns the backing memory.
type darwinCounter struct {
	item C.CFDictionaryRef
}

func (c darwinCounter) Value() int64 {
	return int64(C.IOReportSimpleGetIntegerValue(c.item, 0))
}

func collectEntries(diff C.CFDictionaryRef) []RawChannelEntry {
	key := cfStr(channelsKey)
	defer cfRelease(unsafe.Pointer(key))

	value := C.CFDictionaryGetValue(diff, unsafe.Pointer(key))
	if value == nil {
		return nil
	}

	channels := C.CFArrayRef(value)
	count := int(C.CFArrayGetCount(channels))
	entries := make([]RawChannelEntry, 0, count)

	for i := 0; i < count; i++ {
		item := C.CFDictionaryRef(C.CFArrayGetValueAtIndex(channels, C.CFIndex(i)))

		entries = append(entries, RawChannelEntry{
			Group:     ClassifyGroup(goStr(C.IOReportChannelGetGroup(item))),
			Subgroup:  goStr(C.IOReportChannelGetSubGroup(item)),
			Channel:   ClassifyChannel(goStr(C.IOReportChannelGetChannelName(item))),
			UnitLabel: goStr(C.IOReportChannelGetUnitLabel(item)),
			Counter:   darwinCounter{item: item},
		})
	}

	return entries
}

func channelCount(dict C.CFDictionaryRef) int {
	key := cfStr(channelsKey)
	defer cfRelease(unsafe.Pointer(key))

	value := C.CFDictionaryGetValue(dict, unsafe.Pointer(key))
	if value == nil {
		return 0
	}

	return int(C.CFArrayGetCount(C.CFArrayRef(value)))
}

func cfStr(s string) C.CFStringRef {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))

	return C.CFStringCreateWithCString(C.kCFAllocatorDefault, cs, C.kCFStringEncodingUTF8)
}

func goStr(ref C.CFStringRef) string {
	if ref == nil {
		return ""
	}

	if p := C.CFStringGetCStringPtr(ref, C.kCFStringEncodingUTF8); p != nil {
		return C.GoString(p)
	}

	length := C.CFStringGetLength(ref)
	size := C.CFStringGetMaximumSizeForEncoding(length, C.kCFStringEncodingUTF8) + 1
	buf := make([]byte, int(size))
	if C.CFStringGetCString(ref, (*C.char)(unsafe.Pointer(&buf[0])), size, C.kCFStringEncodingUTF8) == 0 {
		return ""
	}

	return C.GoString((*C.char)(unsafe.Pointer(&buf[0])))
}

func cfRelease(p unsafe.Pointer) {
	C.CFRelease(C.CFTypeRef(p))
}
