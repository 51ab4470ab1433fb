package sandbox

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizePort validates a port mapping and expands the bare form.
//
//	"3000"                -> "3000:3000"
//	"8080:3000"           -> unchanged
//	"127.0.0.1:8080:3000" -> unchanged
func NormalizePort(spec string) (string, error) {
	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 1:
		p, err := parsePort(parts[0])
		if err != nil {
			return "", &PortSpecError{Spec: spec, Reason: "invalid port number"}
		}
		return fmt.Sprintf("%d:%d", p, p), nil
	case 2:
		if _, err := parsePort(parts[0]); err != nil {
			return "", &PortSpecError{Spec: spec, Reason: "invalid host port"}
		}
		if _, err := parsePort(parts[1]); err != nil {
			return "", &PortSpecError{Spec: spec, Reason: "invalid container port"}
		}
		return spec, nil
	case 3:
		if _, err := parsePort(parts[1]); err != nil {
			return "", &PortSpecError{Spec: spec, Reason: "invalid host port"}
		}
		if _, err := parsePort(parts[2]); err != nil {
			return "", &PortSpecError{Spec: spec, Reason: "invalid container port"}
		}
		return spec, nil
	default:
		return "", &PortSpecError{Spec: spec}
	}
}

// NormalizePorts normalizes every spec, failing on the first invalid one.
func NormalizePorts(specs []string) ([]string, error) {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		n, err := NormalizePort(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parsePort(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
