package config

import (
	"errors"
	"fmt"
)

// Validate ensures the document is usable by the server. It returns the first
// problem found; the settings client surfaces the message verbatim.
func (s *Settings) Validate() error {
	if err := s.validateServer(); err != nil {
		return err
	}
	if err := s.validateUsenet(); err != nil {
		return err
	}
	if err := s.validateCache(); err != nil {
		return err
	}
	if err := s.validateStreaming(); err != nil {
		return err
	}
	return s.validateHomeShelves()
}

func (s *Settings) validateServer() error {
	if s.Server.Port < 1 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Server.Port)
	}
	return nil
}

func (s *Settings) validateUsenet() error {
	for i, u := range s.Usenet {
		if u.Port < 1 || u.Port > 65535 {
			return fmt.Errorf("usenet[%d].port must be between 1 and 65535, got %d", i, u.Port)
		}
		if u.Connections < 1 || u.Connections > 100 {
			return fmt.Errorf("usenet[%d].connections must be between 1 and 100, got %d", i, u.Connections)
		}
	}
	return nil
}

func (s *Settings) validateCache() error {
	if s.Cache.MetadataTTLHours < 1 {
		return errors.New("cache.metadataTtlHours must be at least 1")
	}
	return nil
}

func (s *Settings) validateStreaming() error {
	st := s.Streaming
	if st.MaxDownloadWorkers < 1 || st.MaxDownloadWorkers > 100 {
		return fmt.Errorf("streaming.maxDownloadWorkers must be between 1 and 100, got %d", st.MaxDownloadWorkers)
	}
	if st.MaxCacheSizeMB < 1 {
		return errors.New("streaming.maxCacheSizeMB must be at least 1")
	}
	switch st.ServiceMode {
	case StreamingServiceModeUsenet, StreamingServiceModeDebrid, StreamingServiceModeHybrid:
	default:
		return fmt.Errorf("streaming.serviceMode %q is not supported", st.ServiceMode)
	}
	switch st.MultiProviderMode {
	case "", MultiProviderModeFastest, MultiProviderModePreferred:
	default:
		return fmt.Errorf("streaming.multiProviderMode %q is not supported", st.MultiProviderMode)
	}
	return nil
}

func (s *Settings) validateHomeShelves() error {
	seen := make(map[string]struct{}, len(s.HomeShelves.Shelves))
	for _, shelf := range s.HomeShelves.Shelves {
		if shelf.ID == "" {
			return errors.New("homeShelves.shelves entries require an id")
		}
		if _, dup := seen[shelf.ID]; dup {
			return fmt.Errorf("homeShelves.shelves contains duplicate id %q", shelf.ID)
		}
		seen[shelf.ID] = struct{}{}
	}
	return nil
}
