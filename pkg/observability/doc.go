/*
Package observability provides tools for monitoring the dumpling wizard.

GenerationMonitor keeps a bounded history of recipe generation attempts and is
passed to the wizard explicitly. Metrics registers Prometheus collectors and
exposes LifecycleHooks that feed them.
*/
package observability
