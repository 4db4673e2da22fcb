package pve

import (
	"fmt"
	"strconv"
	"strings"
)

// parseContainerList parses `pct list` output:
//
//	VMID       Status     Lock         Name
//	104        running                 media
//	110        stopped                 backups
//
// The Lock column is usually empty, so rows are read as first field =
// ID, second = status, last = name.
func parseContainerList(out string) ([]Container, error) {
	var containers []Container
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "VMID") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("unexpected container list row: %q", line)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("unexpected container ID in row %q: %w", line, err)
		}
		containers = append(containers, Container{
			ID:     id,
			Status: fields[1],
			Name:   fields[len(fields)-1],
		})
	}
	return containers, nil
}

// parseStorageStatus parses `pvesm status` output:
//
//	Name             Type     Status           Total            Used       Available        %
//	local             dir     active        98497780        12713300        80734924   12.91%
//	nas-01-media      nfs     active      1921724416       603832320      1317892096   31.42%
func parseStorageStatus(out string) ([]StoragePool, error) {
	var pools []StoragePool
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Name") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, fmt.Errorf("unexpected storage status row: %q", line)
		}
		pool := StoragePool{
			Name:   fields[0],
			Type:   fields[1],
			Active: fields[2] == "active",
		}
		var err error
		if pool.TotalKiB, err = strconv.ParseInt(fields[3], 10, 64); err != nil {
			return nil, fmt.Errorf("unexpected total in row %q: %w", line, err)
		}
		if pool.UsedKiB, err = strconv.ParseInt(fields[4], 10, 64); err != nil {
			return nil, fmt.Errorf("unexpected used in row %q: %w", line, err)
		}
		if pool.AvailKiB, err = strconv.ParseInt(fields[5], 10, 64); err != nil {
			return nil, fmt.Errorf("unexpected available in row %q: %w", line, err)
		}
		pools = append(pools, pool)
	}
	return pools, nil
}

// parseKeyValues parses `pct config` style "key: value" lines.
func parseKeyValues(out string) map[string]string {
	kv := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		kv[key] = strings.TrimSpace(value)
	}
	return kv
}

// NetAddresses extracts the IPv4 addresses assigned to a container's
// network devices from its configuration (net0, net1, ...). Values look
// like "name=eth0,bridge=vmbr0,gw=192.168.1.1,ip=192.168.1.50/24".
func NetAddresses(config map[string]string) []string {
	var addrs []string
	for key, value := range config {
		if !strings.HasPrefix(key, "net") {
			continue
		}
		for _, part := range strings.Split(value, ",") {
			if ip, ok := strings.CutPrefix(part, "ip="); ok {
				if addr, _, found := strings.Cut(ip, "/"); found {
					addrs = append(addrs, addr)
				} else if ip != "" && ip != "dhcp" {
					addrs = append(addrs, ip)
				}
			}
		}
	}
	return addrs
}
